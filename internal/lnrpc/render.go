package lnrpc

import (
	"io"

	"github.com/jhump/protoreflect/v2/protoprint"
)

// Render writes the proto source of the Lightning service descriptor to w.
func Render(w io.Writer) error {
	fd, err := File()
	if err != nil {
		return err
	}
	pp := protoprint.Printer{}
	return pp.PrintProtoFile(fd, w)
}
