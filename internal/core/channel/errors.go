package channel

import (
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// isNetworkError classifies a transport-layer error: a status
// code of UNAVAILABLE, PERMISSION_DENIED, UNAUTHENTICATED, or
// RESOURCE_EXHAUSTED, or an error with no recognizable status at all
// (classified as UNKNOWN by status.FromError), drives a reconnection.
// Any other status code leaves the channel state unchanged.
func isNetworkError(err error) bool {
	if err == nil {
		return false
	}

	st := status.Convert(err)

	switch st.Code() {
	case codes.Unavailable, codes.PermissionDenied, codes.Unauthenticated,
		codes.ResourceExhausted, codes.Unknown:
		return true
	default:
		return false
	}
}
