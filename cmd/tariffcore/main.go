// Command tariffcore provides operator utilities around the classification
// library: catalog inspection, check-digit calculation, and verification of
// exported legal records and evidence packs.
package main

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/clearfreight/tariffcore/pkg/canonicalize"
	"github.com/clearfreight/tariffcore/pkg/gri"
	"github.com/clearfreight/tariffcore/pkg/ledger"
	"github.com/clearfreight/tariffcore/pkg/tariff"
)

func main() {
	os.Exit(Run(os.Args, os.Stdout, os.Stderr))
}

// Run is the entrypoint, split from main for testing.
func Run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 2 {
		usage(stderr)
		return 2
	}

	switch args[1] {
	case "rules":
		return runRules(stdout)
	case "checkdigit":
		return runCheckDigit(args[2:], stdout, stderr)
	case "verify-export":
		return runVerifyExport(args[2:], stdout, stderr)
	case "verify-pack":
		return runVerifyPack(args[2:], stdout, stderr)
	case "help", "-h", "--help":
		usage(stdout)
		return 0
	default:
		fmt.Fprintf(stderr, "unknown command: %s\n", args[1])
		usage(stderr)
		return 2
	}
}

func usage(w io.Writer) {
	fmt.Fprint(w, `usage: tariffcore <command> [args]

commands:
  rules                      list the GRI rule catalog in workflow order
  checkdigit <code>          compute the check digit for a numeric tariff code
  verify-export <file.json>  validate an exported legal record (schema + version)
  verify-pack <file.zip>     verify an evidence pack's checksum and contents
`)
}

func runRules(stdout io.Writer) int {
	catalog := gri.NewCatalog()
	for _, r := range catalog.Rules() {
		fmt.Fprintf(stdout, "%-20s order %-4v %s\n", r.ID, r.Order, r.Name)
	}
	return 0
}

func runCheckDigit(args []string, stdout, stderr io.Writer) int {
	if len(args) != 1 {
		fmt.Fprintln(stderr, "usage: tariffcore checkdigit <code>")
		return 2
	}
	digit, err := tariff.CalculateCheckDigit(args[0])
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	fmt.Fprintln(stdout, digit)
	return 0
}

func runVerifyExport(args []string, stdout, stderr io.Writer) int {
	if len(args) != 1 {
		fmt.Fprintln(stderr, "usage: tariffcore verify-export <file.json>")
		return 2
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	if err := ledger.ValidateExport(data); err != nil {
		fmt.Fprintf(stderr, "export invalid: %v\n", err)
		return 1
	}
	fmt.Fprintln(stdout, "export OK")
	return 0
}

func runVerifyPack(args []string, stdout, stderr io.Writer) int {
	if len(args) != 1 {
		fmt.Fprintln(stderr, "usage: tariffcore verify-pack <file.zip>")
		return 2
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		fmt.Fprintf(stderr, "not a valid evidence pack: %v\n", err)
		return 1
	}
	required := map[string]bool{
		"decisions.json":   false,
		"audit_trail.json": false,
		"manifest.json":    false,
	}
	for _, f := range zr.File {
		if _, ok := required[f.Name]; ok {
			required[f.Name] = true
		}
	}
	for name, found := range required {
		if !found {
			fmt.Fprintf(stderr, "evidence pack is missing %s\n", name)
			return 1
		}
	}

	fmt.Fprintf(stdout, "pack OK, checksum %s\n", canonicalize.HashBytes(data))
	return 0
}
