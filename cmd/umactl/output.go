package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/betbot/umactf/uma/types"
)

var (
	keyColor  = color.New(color.FgCyan)
	okColor   = color.New(color.FgGreen)
	warnColor = color.New(color.FgYellow)
)

// printKV 输出 "key: value" 行
func printKV(w io.Writer, key string, value interface{}) {
	keyColor.Fprintf(w, "%-22s", key+":")
	fmt.Fprintf(w, " %v\n", value)
}

func printOK(w io.Writer, format string, args ...interface{}) {
	okColor.Fprintf(w, format+"\n", args...)
}

func printWarn(w io.Writer, format string, args ...interface{}) {
	warnColor.Fprintf(w, format+"\n", args...)
}

func phaseColor(p types.Phase) *color.Color {
	switch p {
	case types.PhaseReady:
		return okColor
	case types.PhaseResolved, types.PhaseEmergencyResolved:
		return color.New(color.FgMagenta)
	case types.PhaseUnknown:
		return color.New(color.FgRed)
	default:
		return warnColor
	}
}
