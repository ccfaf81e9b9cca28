//go:build !structurecore

package structure

// NewNative returns ErrNativeUnavailable; build with -tags structurecore to
// link libstructure_camera
func NewNative() (Driver, error) {
	return nil, ErrNativeUnavailable
}
