package inspect

import "fmt"

func errNotMounted(subsystem string) error {
	return fmt.Errorf("inspect: %s subsystem not mounted on this server", subsystem)
}
