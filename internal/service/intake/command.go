package intake

import "strings"

type command int

const (
	cmdNone command = iota
	cmdCancel
	cmdRestart
	cmdStart
	cmdContinue
)

var commands = map[string]command{
	"取消":       cmdCancel,
	"cancel":   cmdCancel,
	"重新開始":     cmdRestart,
	"restart":  cmdRestart,
	"填表":       cmdStart,
	"開始":       cmdStart,
	"start":    cmdStart,
	"繼續":       cmdContinue,
	"continue": cmdContinue,
}

func parseCommand(text string) command {
	return commands[strings.ToLower(text)]
}
