package protocol

const (
	// Protocol/transport validation.
	ErrProtoBadRequest = "E_PROTO_BAD_REQUEST"
	ErrServerFull      = "E_SERVER_FULL"

	// Action layer.
	ErrBadRequest    = "E_BAD_REQUEST"
	ErrNoView        = "E_NO_VIEW"
	ErrInvalidTarget = "E_INVALID_TARGET"
	ErrNoResource    = "E_NO_RESOURCE"
	ErrBlocked       = "E_BLOCKED"
	ErrInternal      = "E_INTERNAL"
)

var knownCodes = map[string]struct{}{
	ErrProtoBadRequest: {},
	ErrServerFull:      {},
	ErrBadRequest:      {},
	ErrNoView:          {},
	ErrInvalidTarget:   {},
	ErrNoResource:      {},
	ErrBlocked:         {},
	ErrInternal:        {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}
