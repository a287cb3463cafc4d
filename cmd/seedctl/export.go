package main

import (
	"fmt"

	"seedswap/indexer"
	"seedswap/rpc"
)

const exportPageSize = 500

// exportRecords pages through every swap record on the node and writes them
// to path as Parquet. It returns the number of rows written.
func exportRecords(c *client, path string) (int, error) {
	var rows []indexer.RecordRow
	for offset := uint64(0); ; offset += exportPageSize {
		var page []rpc.SwapRecordResult
		params := map[string]uint64{"offset": offset, "limit": exportPageSize}
		if err := c.call("seedswap_records", params, &page); err != nil {
			return 0, fmt.Errorf("fetch records at %d: %w", offset, err)
		}
		for _, rec := range page {
			rows = append(rows, indexer.RecordRow{
				ID:                rec.ID,
				User:              rec.User,
				EthAmount:         rec.EthAmount,
				TokenAmount:       rec.TokenAmount,
				DistributedAmount: rec.DistributedAmount,
				Timestamp:         rec.Timestamp,
			})
		}
		if len(page) < exportPageSize {
			break
		}
	}
	if err := indexer.ExportParquet(path, rows); err != nil {
		return 0, err
	}
	return len(rows), nil
}
