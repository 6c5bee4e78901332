package remote

import (
	"errors"
	"fmt"
	"strings"

	"lautenbacher.net/gosignal/util"
)

var ErrUnknownCommand = errors.New("unknown command")

// ParseCommand maps a remote command to a request kind. "A" is the
// single-byte toggle sent by serial remotes; "toggle", "emergency" and
// "normal" are the long forms.
func ParseCommand(cmd string) (util.RequestKind, error) {
	cmd = strings.TrimSpace(cmd)
	switch {
	case strings.EqualFold(cmd, "A"), strings.EqualFold(cmd, "toggle"):
		return util.Toggle, nil
	case strings.EqualFold(cmd, "emergency"):
		return util.WantEmergency, nil
	case strings.EqualFold(cmd, "normal"):
		return util.WantNormal, nil
	}
	return util.Toggle, fmt.Errorf("%w: %q", ErrUnknownCommand, cmd)
}
