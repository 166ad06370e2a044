// ui/selectSourceAddress.go
package ui

import (
	"fmt"
	"net/netip"
	"slices"

	"github.com/charmbracelet/huh"

	fwerrors "fwreach/errors"
	"fwreach/tracecollector/utility"
)

// SelectSourceAddress prompts for one of the host's IPv4 addresses to use as
// the trial source.
func SelectSourceAddress() (string, error) {
	addrs, err := utility.LocalIPv4Addrs()
	if err != nil {
		return "", fwerrors.Wrap(err, fwerrors.KindPrecondition, "list local addresses")
	}

	choices := sourceOptions(addrs)
	if len(choices) == 0 {
		return "", fwerrors.New(fwerrors.KindPrecondition, "no usable IPv4 address on any interface")
	}

	var selected string
	form := huh.NewSelect[string]().
		Title("Select the source address").
		Options(choices...).
		Value(&selected)

	if err := form.Run(); err != nil {
		return "", fwerrors.Wrap(err, fwerrors.KindValidation, "source selection")
	}
	return selected, nil
}

// sourceOptions lists "addr (iface)" choices ordered by interface name.
func sourceOptions(addrs map[string][]netip.Addr) []huh.Option[string] {
	names := make([]string, 0, len(addrs))
	for name := range addrs {
		names = append(names, name)
	}
	slices.Sort(names)

	var choices []huh.Option[string]
	for _, name := range names {
		for _, a := range addrs[name] {
			choices = append(choices, huh.NewOption(fmt.Sprintf("%s (%s)", a, name), a.String()))
		}
	}
	return choices
}
