package convert

import (
	"github.com/pkg/errors"

	"github.com/Manav02012002/hepconduit/pkg/hepio"
	"github.com/Manav02012002/hepconduit/pkg/hepmodel"
)

// Read reads path as format, or infers the format from the file extension
// when format is "".
func Read(path, format string) (hepmodel.EventFile, error) {
	if format == "" {
		f, err := hepio.DetectFormat(path)
		if err != nil {
			return hepmodel.EventFile{}, err
		}
		format = f
	}
	reader, err := hepio.GetReader(format)
	if err != nil {
		return hepmodel.EventFile{}, err
	}
	ef, err := reader.Read(path)
	if err != nil {
		return hepmodel.EventFile{}, errors.Wrapf(err, "convert: read %s", path)
	}
	ef.FormatName = format
	return ef, nil
}

// Write writes ef's events to path as format, or infers the format from
// the file extension when format is "".
func Write(path string, ef hepmodel.EventFile, format string, opts hepio.WriteOptions) error {
	if format == "" {
		f, err := hepio.DetectFormat(path)
		if err != nil {
			return err
		}
		format = f
	}
	writer, err := hepio.GetWriter(format)
	if err != nil {
		return err
	}
	cur := hepio.NewSliceCursor(ef.Events, nil)
	return errors.Wrapf(writer.Write(path, cur, ef.RunInfo, opts), "convert: write %s", path)
}
