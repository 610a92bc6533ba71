package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/aymeric-roucher/PolymarketShowcase/internal/polymarket"
	"github.com/aymeric-roucher/PolymarketShowcase/internal/portfolio"
)

// ExportFormat represents the export file format
type ExportFormat string

const (
	FormatCSV  ExportFormat = "csv"
	FormatJSON ExportFormat = "json"
)

// SnapshotExporter writes wallet snapshots to disk
type SnapshotExporter struct {
	logger    *zap.Logger
	outputDir string
}

// NewSnapshotExporter creates a new snapshot exporter
func NewSnapshotExporter(outputDir string, logger *zap.Logger) *SnapshotExporter {
	return &SnapshotExporter{
		logger:    logger,
		outputDir: outputDir,
	}
}

// ExportSnapshot writes the full snapshot as indented JSON
func (se *SnapshotExporter) ExportSnapshot(snapshot *portfolio.WalletSnapshot) (string, error) {
	outputPath, err := se.preparePath("snapshot", snapshot.User, FormatJSON)
	if err != nil {
		return "", err
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return "", fmt.Errorf("failed to create JSON file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(snapshot); err != nil {
		return "", fmt.Errorf("failed to encode snapshot: %w", err)
	}

	se.logger.Info("Snapshot exported",
		zap.String("file", outputPath),
		zap.String("wallet", snapshot.User))

	return outputPath, nil
}

// ExportHistory writes the value history as CSV with one row per point
func (se *SnapshotExporter) ExportHistory(snapshot *portfolio.WalletSnapshot) (string, error) {
	outputPath, err := se.preparePath("history", snapshot.User, FormatCSV)
	if err != nil {
		return "", err
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return "", fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"horizon", "date", "value"}); err != nil {
		return "", fmt.Errorf("failed to write CSV headers: %w", err)
	}

	// Stable row order across runs
	horizons := make([]string, 0, len(snapshot.History))
	for horizon := range snapshot.History {
		horizons = append(horizons, horizon)
	}
	sort.Strings(horizons)

	rows := 0
	for _, horizon := range horizons {
		for _, point := range snapshot.History[horizon] {
			row := []string{
				horizon,
				point.Date,
				strconv.FormatFloat(point.Value, 'f', -1, 64),
			}
			if err := writer.Write(row); err != nil {
				return "", fmt.Errorf("failed to write history point: %w", err)
			}
			rows++
		}
	}

	se.logger.Info("History exported",
		zap.String("file", outputPath),
		zap.String("wallet", snapshot.User),
		zap.Int("rows", rows))

	return outputPath, nil
}

// ExportPositions writes the open positions as CSV
func (se *SnapshotExporter) ExportPositions(snapshot *portfolio.WalletSnapshot) (string, error) {
	outputPath, err := se.preparePath("positions", snapshot.User, FormatCSV)
	if err != nil {
		return "", err
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return "", fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	headers := []string{"title", "outcome", "size", "avg_price", "cur_price", "current_value", "cash_pnl", "percent_pnl"}
	if err := writer.Write(headers); err != nil {
		return "", fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, pos := range snapshot.OpenPositions {
		row := []string{
			pos.Title,
			pos.Outcome,
			formatFloat(pos.Size),
			formatFloat(pos.AvgPrice),
			formatFloat(pos.CurPrice),
			formatFloat(pos.CurrentValue),
			formatFloat(pos.CashPnl),
			formatFloat(pos.PercentPnl),
		}
		if err := writer.Write(row); err != nil {
			return "", fmt.Errorf("failed to write position: %w", err)
		}
	}

	se.logger.Info("Positions exported",
		zap.String("file", outputPath),
		zap.String("wallet", snapshot.User),
		zap.Int("count", len(snapshot.OpenPositions)))

	return outputPath, nil
}

// preparePath ensures the output directory exists and builds a timestamped filename
func (se *SnapshotExporter) preparePath(kind, wallet string, format ExportFormat) (string, error) {
	if err := os.MkdirAll(se.outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	short := wallet
	if len(short) > 10 {
		short = short[:10]
	}

	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("%s_%s_%s.%s", kind, short, timestamp, format)
	return filepath.Join(se.outputDir, filename), nil
}

func formatFloat(v *float64) string {
	return strconv.FormatFloat(polymarket.Float(v), 'f', -1, 64)
}
