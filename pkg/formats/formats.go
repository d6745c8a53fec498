// Package formats provides parsers and writers for the mesh and code
// container file formats used by the quantization pipeline.
package formats

import "errors"

// ErrNonFiniteCoord rejects vertex coordinates that parse as NaN or
// infinity. Both mesh parsers share it; downstream stages assume finite
// coordinates.
var ErrNonFiniteCoord = errors.New("non-finite vertex coordinate")

// Note: Wavefront OBJ is implemented in obj.go
// Note: ASCII PLY reading and writing is implemented in ply.go
// Note: the QVC quantized vertex container is implemented in qvc.go
