package compress

import (
	"fmt"

	"github.com/fastbit/ibis/format"
)

func errInvalidCompression(target string, c format.CompressionType) error {
	return fmt.Errorf("invalid %s compression: %s", target, c)
}
