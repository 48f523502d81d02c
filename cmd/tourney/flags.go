package main

import (
	"flag"
	"fmt"

	"github.com/shopspring/decimal"
)

// flagSet wraps flag.FlagSet to add support for decimal-string flags,
// which the standard library's flag package has no notion of.
type flagSet struct {
	*flag.FlagSet
}

// newCustomFlagSet creates a flagSet with ContinueOnError behavior.
func newCustomFlagSet(name string) *flagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	return &flagSet{FlagSet: fs}
}

// DecimalVar defines a decimal flag. The standard flag package has no
// notion of fixed-point money values, so a custom flag.Value carries one.
func (fs *flagSet) DecimalVar(p *decimal.Decimal, name string, value decimal.Decimal, usage string) {
	fs.FlagSet.Var(&decimalValue{p: p}, name, usage)
	*p = value
}

type decimalValue struct {
	p *decimal.Decimal
}

func (v *decimalValue) String() string {
	if v.p == nil {
		return "0"
	}
	return v.p.String()
}

func (v *decimalValue) Set(s string) error {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("invalid decimal value %q", s)
	}
	*v.p = d
	return nil
}
