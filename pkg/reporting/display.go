/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: display.go
Description: Opens rendered profiles in the desktop's default viewer.
*/

package reporting

import (
	"fmt"
	"os/exec"
)

// Displayer shows a rendered file to the user.
type Displayer interface {
	Display(path string) error
}

// BrowserDisplay tries each opener in turn until one starts.
type BrowserDisplay struct {
	Openers []string
	start   func(name string, args ...string) error
}

// NewBrowserDisplay uses xdg-open, open and start.
func NewBrowserDisplay() *BrowserDisplay {
	return &BrowserDisplay{
		Openers: []string{"xdg-open", "open", "start"},
		start: func(name string, args ...string) error {
			return exec.Command(name, args...).Start()
		},
	}
}

// Display opens path without waiting for the viewer to exit.
func (d *BrowserDisplay) Display(path string) error {
	var lastErr error
	for _, opener := range d.Openers {
		if err := d.start(opener, path); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return fmt.Errorf("could not open %s, please open it manually: %v", path, lastErr)
}

// NoDisplay discards display requests.
type NoDisplay struct{}

func (NoDisplay) Display(string) error { return nil }
