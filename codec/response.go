package codec

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"strings"

	"github.com/pkg/errors"

	"github.com/mensylisir/xmexec/executor"
)

// ErrProtocol reports a session server reply that does not conform to the
// response schema. Callers match it with errors.Is.
var ErrProtocol = errors.New("malformed session response")

// wireResponse is the reply record a session server emits for every command.
// All three fields are required; unknown fields are rejected.
type wireResponse struct {
	Stdout     *string `json:"stdout"`
	Stderr     *string `json:"stderr"`
	ExitStatus *int    `json:"exit_status"`
}

// DecodeResponse parses one base64(JSON) reply line from a session server
// into a CommandResult. Any deviation from the schema yields ErrProtocol.
func DecodeResponse(line string) (*executor.CommandResult, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(line))
	if err != nil {
		return nil, errors.Wrapf(ErrProtocol, "reply is not valid base64: %v", err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	var resp wireResponse
	if err := dec.Decode(&resp); err != nil {
		return nil, errors.Wrapf(ErrProtocol, "reply is not a response record: %v", err)
	}
	if resp.Stdout == nil || resp.Stderr == nil || resp.ExitStatus == nil {
		return nil, errors.Wrap(ErrProtocol, "response record is missing required fields")
	}

	return &executor.CommandResult{
		Stdout:     *resp.Stdout,
		Stderr:     *resp.Stderr,
		ExitStatus: *resp.ExitStatus,
	}, nil
}
