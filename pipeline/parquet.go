package pipeline

import (
	"bytes"
	"encoding/csv"

	parquetbuffer "github.com/xitongsys/parquet-go-source/buffer"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"
)

type canonicalParquetRow struct {
	ElapsedMS    float64 `parquet:"name=elapsed_ms, type=DOUBLE"`
	ForceN       float64 `parquet:"name=force_n, type=DOUBLE"`
	ForceKG      float64 `parquet:"name=force_kg, type=DOUBLE"`
	SampleNumber float64 `parquet:"name=sample_number, type=DOUBLE"`
	BattRaw      float64 `parquet:"name=batt_raw, type=DOUBLE"`
	RecordIndex  int64   `parquet:"name=record_index, type=INT64"`
}

func writeCanonicalParquet(path string, samples []CanonicalSample) error {
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return err
	}
	pw, err := writer.NewParquetWriter(fw, new(canonicalParquetRow), 4)
	if err != nil {
		_ = fw.Close()
		return err
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY
	for _, s := range samples {
		if err := pw.Write(toParquetRow(s)); err != nil {
			_ = pw.WriteStop()
			_ = fw.Close()
			return err
		}
	}
	if err := pw.WriteStop(); err != nil {
		_ = fw.Close()
		return err
	}
	return fw.Close()
}

func marshalCanonicalParquet(samples []CanonicalSample) ([]byte, error) {
	fw := parquetbuffer.NewBufferFile()
	pw, err := writer.NewParquetWriter(fw, new(canonicalParquetRow), 4)
	if err != nil {
		return nil, err
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY
	for _, s := range samples {
		if err := pw.Write(toParquetRow(s)); err != nil {
			_ = pw.WriteStop()
			return nil, err
		}
	}
	if err := pw.WriteStop(); err != nil {
		return nil, err
	}
	if err := fw.Close(); err != nil {
		return nil, err
	}
	return append([]byte(nil), fw.Bytes()...), nil
}

func toParquetRow(s CanonicalSample) canonicalParquetRow {
	return canonicalParquetRow{
		ElapsedMS:    s.ElapsedMS,
		ForceN:       s.ForceN,
		ForceKG:      s.ForceKG,
		SampleNumber: s.SampleNumber,
		BattRaw:      s.BattRaw,
		RecordIndex:  int64(s.RecordIndex),
	}
}

func marshalCanonicalCSV(samples []CanonicalSample) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := writeCanonicalRows(w, samples); err != nil {
		return nil, err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
