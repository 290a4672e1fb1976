package commands

import (
	"fmt"
	"io"

	"github.com/mash-protocol/regtokens/pkg/specparse"
)

// RunNames prints the names derived for a block and register.
func RunNames(args []string, stdout, stderr io.Writer) int {
	if len(args) != 2 {
		fmt.Fprintln(stderr, "Usage: regtokens names <block> <register>")
		return exitCommandError
	}

	names := specparse.Names(args[0], args[1])
	fmt.Fprintf(stdout, "package: %s\n", specparse.PackageName(args[0]))
	fmt.Fprintf(stdout, "long:    %s\n", names.Long)
	fmt.Fprintf(stdout, "short:   %s\n", names.Short)
	fmt.Fprintf(stdout, "type:    %s\n", names.Type)
	fmt.Fprintf(stdout, "value:   %s\n", specparse.ValueName(names.Type))
	fmt.Fprintf(stdout, "field:   %s\n", specparse.FieldName(names.Long))
	return exitSuccess
}
