package indexer

import (
	"fmt"
	"os"

	"github.com/xitongsys/parquet-go-source/writerfile"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"
)

// RecordRow is the flat export shape of a swap record. Amounts stay decimal
// strings so no precision is lost.
type RecordRow struct {
	ID                uint64
	User              string
	EthAmount         string
	TokenAmount       string
	DistributedAmount string
	Timestamp         uint64
}

type parquetRecord struct {
	ID                int64  `parquet:"name=id, type=INT64"`
	User              string `parquet:"name=user, type=UTF8, encoding=PLAIN_DICTIONARY"`
	EthAmount         string `parquet:"name=eth_amount, type=UTF8, encoding=PLAIN_DICTIONARY"`
	TokenAmount       string `parquet:"name=token_amount, type=UTF8, encoding=PLAIN_DICTIONARY"`
	DistributedAmount string `parquet:"name=distributed_amount, type=UTF8, encoding=PLAIN_DICTIONARY"`
	Timestamp         int64  `parquet:"name=timestamp, type=INT64"`
}

// ExportParquet writes rows to path as a SNAPPY compressed Parquet file.
func ExportParquet(path string, rows []RecordRow) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("indexer: create parquet: %w", err)
	}
	fw := writerfile.NewWriterFile(file)
	pw, err := writer.NewParquetWriter(fw, new(parquetRecord), 1)
	if err != nil {
		file.Close()
		return fmt.Errorf("indexer: parquet schema: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for _, row := range rows {
		pr := &parquetRecord{
			ID:                int64(row.ID),
			User:              row.User,
			EthAmount:         row.EthAmount,
			TokenAmount:       row.TokenAmount,
			DistributedAmount: row.DistributedAmount,
			Timestamp:         int64(row.Timestamp),
		}
		if err := pw.Write(pr); err != nil {
			pw.WriteStop()
			file.Close()
			return fmt.Errorf("indexer: parquet write: %w", err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		file.Close()
		return fmt.Errorf("indexer: parquet flush: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("indexer: close parquet file: %w", err)
	}
	return nil
}
