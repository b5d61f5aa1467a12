package bench

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"github.com/pkg/errors"
)

var csvHeader = []string{"Depth", "NodeCount", "InitializationTime", "MemoryUsage", "SearchTime"}

// WriteCSV writes the header and one line per row. Times are in
// milliseconds, memory in megabytes.
func WriteCSV(w io.Writer, rows []Row) error {
	return writeCSV(w, rows, true)
}

// AppendCSV appends rows to the file at path, creating it if needed. The
// header is only written to an empty file.
func AppendCSV(path string, rows []Row) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrapf(err, "failed to open %s", path)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errors.Wrapf(cerr, "failed to close %s", path)
		}
	}()

	info, err := f.Stat()
	if err != nil {
		return errors.Wrapf(err, "failed to stat %s", path)
	}
	return writeCSV(f, rows, info.Size() == 0)
}

func writeCSV(w io.Writer, rows []Row, header bool) error {
	cw := csv.NewWriter(w)
	if header {
		if err := cw.Write(csvHeader); err != nil {
			return errors.Wrap(err, "failed to write csv header")
		}
	}
	for _, row := range rows {
		if err := cw.Write(row.record()); err != nil {
			return errors.Wrapf(err, "failed to write row for depth %d", row.Depth)
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "failed to flush csv")
}

func (r Row) record() []string {
	return []string{
		strconv.Itoa(r.Depth),
		strconv.Itoa(r.NodeCount),
		strconv.FormatInt(r.InitializationTime.Milliseconds(), 10),
		strconv.FormatUint(r.MemoryUsage, 10),
		strconv.FormatFloat(float64(r.SearchTime.Microseconds())/1000, 'f', 2, 64),
	}
}
