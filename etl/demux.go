package etl

import (
	"github.com/exhibitdata/exhibit/eio"
)

// Demux splits the tagged output stream back into one table's rows: it
// unwraps and passes through rows whose tag matches its table index and
// drops all others.  One Demux is instantiated per output table.
type Demux struct {
	index  int
	writer eio.Writer
}

func NewDemux(index int, writer eio.Writer) *Demux {
	return &Demux{index: index, writer: writer}
}

func (d *Demux) Write(row TaggedRow) error {
	if row.Index != d.index {
		return nil
	}
	return d.writer.Write(row.Row)
}
