// Package table provides generic Parquet read/write helpers shared by the
// silver and gold layers. Every table in the pipeline is small enough to
// hold in memory, so the API is slice-in/slice-out rather than streaming.
package table

import (
	"fmt"
	"io"
	"os"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"
)

// ReadAll reads every row of a Parquet file into a slice of T.
func ReadAll[T any](path string) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	reader := parquet.NewGenericReader[T](f)
	defer reader.Close()

	rows := make([]T, reader.NumRows())
	read := 0
	for read < len(rows) {
		n, err := reader.Read(rows[read:])
		read += n
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
	}
	return rows[:read], nil
}

// Writer writes rows of T to a Parquet file configured for analytical
// queries: Zstd compression, 64MB row groups, page-level statistics.
//
// Gold tables are rebuilt in full on every pipeline run, so the writer
// always truncates its target file.
type Writer[T any] struct {
	file   *os.File
	writer *parquet.GenericWriter[T]
	count  int
}

// NewWriter creates a Parquet writer for the given path.
func NewWriter[T any](path string) (*Writer[T], error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create parquet file: %w", err)
	}

	writer := parquet.NewGenericWriter[T](file,
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedDefault}),
		parquet.PageBufferSize(8*1024),
		parquet.WriteBufferSize(64*1024*1024),
		parquet.DataPageStatistics(true),
		parquet.CreatedBy("camonet", "1.0", ""),
	)

	return &Writer[T]{file: file, writer: writer}, nil
}

// Write writes a batch of rows.
func (w *Writer[T]) Write(rows []T) (int, error) {
	n, err := w.writer.Write(rows)
	w.count += n
	if err != nil {
		return n, fmt.Errorf("write parquet rows: %w", err)
	}
	return n, nil
}

// Close flushes the final row group and closes the file.
func (w *Writer[T]) Close() error {
	if err := w.writer.Close(); err != nil {
		w.file.Close()
		return fmt.Errorf("close parquet writer: %w", err)
	}
	return w.file.Close()
}

// Count returns the total number of rows written.
func (w *Writer[T]) Count() int {
	return w.count
}

// WriteAll writes rows to path in a single batch and returns the row count.
func WriteAll[T any](path string, rows []T) (int, error) {
	w, err := NewWriter[T](path)
	if err != nil {
		return 0, err
	}
	if _, err := w.Write(rows); err != nil {
		w.Close()
		return 0, err
	}
	if err := w.Close(); err != nil {
		return 0, err
	}
	return w.Count(), nil
}
