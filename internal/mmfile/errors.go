package mmfile

import "fmt"

func errNegativeSize(size int) error {
	return fmt.Errorf("mmfile: negative mapping size %d", size)
}
