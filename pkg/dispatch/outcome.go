package dispatch

import (
	"fmt"

	"github.com/imdesk/imclient/pkg/classify"
)

// Kind tags the Outcome variant.
type Kind uint8

const (
	// KindSuccess means the server accepted the credentials.
	KindSuccess Kind = iota + 1

	// KindRejected means the server answered success=false.
	KindRejected

	// KindTransportError means the attempt failed before a valid reply.
	KindTransportError
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "SUCCESS"
	case KindRejected:
		return "REJECTED"
	case KindTransportError:
		return "TRANSPORT_ERROR"
	default:
		return "UNKNOWN"
	}
}

// Outcome is the terminal, caller-visible result of an attempt.
type Outcome struct {
	Kind Kind

	// Message is the server's message for KindRejected.
	Message string

	// Category and Detail are set for KindTransportError.
	Category classify.Category
	Detail   string
}

// Success returns a success outcome.
func Success() Outcome {
	return Outcome{Kind: KindSuccess}
}

// Rejected returns a rejection carrying the server message.
func Rejected(message string) Outcome {
	return Outcome{Kind: KindRejected, Message: message, Category: classify.ApplicationRejection}
}

// TransportError returns a transport failure with the category's default detail.
func TransportError(cat classify.Category) Outcome {
	return Outcome{Kind: KindTransportError, Category: cat, Detail: cat.Detail()}
}

// IsSuccess reports whether the outcome is a success.
func (o Outcome) IsSuccess() bool {
	return o.Kind == KindSuccess
}

// String returns a compact description for logs.
func (o Outcome) String() string {
	switch o.Kind {
	case KindSuccess:
		return "SUCCESS"
	case KindRejected:
		return fmt.Sprintf("REJECTED(%q)", o.Message)
	case KindTransportError:
		return fmt.Sprintf("TRANSPORT_ERROR(%s: %s)", o.Category, o.Detail)
	default:
		return "UNRESOLVED"
	}
}
