package cli

import (
	"bufio"
	"strings"
)

// confirm asks a yes/no question on the context's input. Anything but y or
// yes cancels.
func (c *Context) confirm(question string) (bool, error) {
	c.printf("%s [y/N]: ", question)
	response, err := bufio.NewReader(c.in()).ReadString('\n')
	if err != nil && response == "" {
		c.println("Cancelled.")
		return false, nil
	}
	response = strings.TrimSpace(strings.ToLower(response))
	if response != "y" && response != "yes" {
		c.println("Cancelled.")
		return false, nil
	}
	return true, nil
}
