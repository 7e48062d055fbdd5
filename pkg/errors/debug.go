package errors

import (
	"errors"
	"fmt"
)

// upstreamFailure is satisfied by errors that carry the remote API's response.
type upstreamFailure interface {
	error
	UpstreamStatus() int
	UpstreamCode() string
	UpstreamMessages() []string
}

type ErrorDump struct {
	TopMessage string `json:"top_message"`
	Code       Code   `json:"code,omitempty"`

	Chain []string `json:"chain,omitempty"`

	UpstreamStatus   int      `json:"upstream_status,omitempty"`
	UpstreamCode     string   `json:"upstream_code,omitempty"`
	UpstreamMessages []string `json:"upstream_messages,omitempty"`
}

func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}

	d := ErrorDump{
		TopMessage: err.Error(),
	}

	if te := As(err); te != nil {
		d.Code = te.Code()
	}

	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}

	var upstream upstreamFailure
	if errors.As(err, &upstream) {
		d.UpstreamStatus = upstream.UpstreamStatus()
		d.UpstreamCode = upstream.UpstreamCode()
		d.UpstreamMessages = upstream.UpstreamMessages()
	}

	return d
}
