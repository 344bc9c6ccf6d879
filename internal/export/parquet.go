// Package export dumps recorded spins to a parquet file, locally or in S3.
package export

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/chrisdamba/whattoeat/internal/cloudwriter"
	"github.com/chrisdamba/whattoeat/internal/models"
	"github.com/chrisdamba/whattoeat/internal/repositories"
	"github.com/rs/zerolog/log"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/source"
	"github.com/xitongsys/parquet-go/writer"
)

const (
	DestinationLocal = "local"
	DestinationS3    = "s3"
)

type SpinRow struct {
	ID              string  `parquet:"name=id,type=BYTE_ARRAY,convertedtype=UTF8"`
	SessionID       string  `parquet:"name=session_id,type=BYTE_ARRAY,convertedtype=UTF8"`
	Category        string  `parquet:"name=category,type=BYTE_ARRAY,convertedtype=UTF8"`
	SectionIndex    int32   `parquet:"name=section_index,type=INT32"`
	ItemID          string  `parquet:"name=item_id,type=BYTE_ARRAY,convertedtype=UTF8"`
	ItemName        string  `parquet:"name=item_name,type=BYTE_ARRAY,convertedtype=UTF8"`
	Rotation        float64 `parquet:"name=rotation,type=DOUBLE"`
	Weighted        bool    `parquet:"name=weighted,type=BOOLEAN"`
	Latitude        float64 `parquet:"name=latitude,type=DOUBLE"`
	Longitude       float64 `parquet:"name=longitude,type=DOUBLE"`
	LocationDefault bool    `parquet:"name=location_default,type=BOOLEAN"`
	RestaurantCount int32   `parquet:"name=restaurant_count,type=INT32"`
	Fallback        bool    `parquet:"name=fallback,type=BOOLEAN"`
	CreatedAt       int64   `parquet:"name=created_at,type=INT64,convertedtype=TIMESTAMP_MILLIS"`
}

func NewSpinRow(r *models.SpinRecord) SpinRow {
	return SpinRow{
		ID:              r.ID,
		SessionID:       r.SessionID,
		Category:        string(r.Category),
		SectionIndex:    int32(r.SectionIndex),
		ItemID:          r.ItemID,
		ItemName:        r.ItemName,
		Rotation:        r.Rotation,
		Weighted:        r.Weighted,
		Latitude:        r.Location.Lat,
		Longitude:       r.Location.Lng,
		LocationDefault: r.LocationDefault,
		RestaurantCount: int32(r.RestaurantCount),
		Fallback:        r.Fallback,
		CreatedAt:       r.CreatedAt.UnixMilli(),
	}
}

// CloudParquetFile adapts a CloudWriter to parquet's write-only file API.
type CloudParquetFile struct {
	cloudWriter cloudwriter.CloudWriter
	offset      int64
}

func NewCloudParquetFile(cloudWriter cloudwriter.CloudWriter) *CloudParquetFile {
	return &CloudParquetFile{cloudWriter: cloudWriter}
}

func (c *CloudParquetFile) Open(string) (source.ParquetFile, error)   { return c, nil }
func (c *CloudParquetFile) Create(string) (source.ParquetFile, error) { return c, nil }

func (c *CloudParquetFile) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		c.offset = offset
	case io.SeekCurrent:
		c.offset += offset
	default:
		return 0, fmt.Errorf("seek from end not supported for cloud storage")
	}
	return c.offset, nil
}

func (c *CloudParquetFile) Read([]byte) (int, error) {
	return 0, fmt.Errorf("read not supported for cloud storage")
}

func (c *CloudParquetFile) Write(p []byte) (int, error) {
	n, err := c.cloudWriter.Write(p)
	c.offset += int64(n)
	return n, err
}

func (c *CloudParquetFile) Close() error {
	return c.cloudWriter.Close()
}

type Exporter struct {
	spins   repositories.SpinRepository
	cfg     models.ExportConfig
	factory cloudwriter.CloudWriterFactory
	now     func() time.Time
}

// NewExporter writes locally unless cfg names the s3 destination, in which
// case factory must be set.
func NewExporter(spins repositories.SpinRepository, cfg models.ExportConfig, factory cloudwriter.CloudWriterFactory) *Exporter {
	return &Exporter{spins: spins, cfg: cfg, factory: factory, now: time.Now}
}

// ObjectName is where an export started at t lands, relative to the
// configured path or bucket.
func ObjectName(t time.Time) string {
	t = t.UTC()
	return path.Join(models.TopicWheelSpins,
		fmt.Sprintf("year=%d/month=%02d/day=%02d", t.Year(), t.Month(), t.Day()),
		fmt.Sprintf("spins-%s.parquet", t.Format("20060102T150405")))
}

// Export writes every spin recorded since the given time and returns how
// many rows went out and where.
func (e *Exporter) Export(ctx context.Context, since time.Time) (int, string, error) {
	records, err := e.spins.ListSince(ctx, since)
	if err != nil {
		return 0, "", fmt.Errorf("listing spins: %w", err)
	}

	fw, target, err := e.open(ctx)
	if err != nil {
		return 0, "", err
	}

	pw, err := writer.NewParquetWriter(fw, new(SpinRow), 4)
	if err != nil {
		fw.Close()
		return 0, "", fmt.Errorf("failed to create ParquetWriter: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for _, r := range records {
		if err := pw.Write(NewSpinRow(r)); err != nil {
			fw.Close()
			return 0, "", fmt.Errorf("failed to write row: %w", err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		fw.Close()
		return 0, "", fmt.Errorf("failed to finish parquet file: %w", err)
	}
	if err := fw.Close(); err != nil {
		return 0, "", fmt.Errorf("failed to close %s: %w", target, err)
	}

	log.Info().Int("rows", len(records)).Str("target", target).Time("since", since).Msg("Export complete")
	return len(records), target, nil
}

func (e *Exporter) open(ctx context.Context) (source.ParquetFile, string, error) {
	name := ObjectName(e.now())
	switch e.cfg.Destination {
	case DestinationS3:
		if e.factory == nil {
			return nil, "", fmt.Errorf("no cloud writer configured for s3 export")
		}
		key := path.Join(e.cfg.Path, name)
		cw, err := e.factory.NewWriter(ctx, e.cfg.Bucket, key)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create cloud file writer: %w", err)
		}
		return NewCloudParquetFile(cw), "s3://" + e.cfg.Bucket + "/" + key, nil
	case DestinationLocal, "":
		fullPath := filepath.Join(e.cfg.Path, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(fullPath), os.ModePerm); err != nil {
			return nil, "", err
		}
		fw, err := local.NewLocalFileWriter(fullPath)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create local file writer: %w", err)
		}
		return fw, fullPath, nil
	default:
		return nil, "", fmt.Errorf("unsupported export destination: %s", e.cfg.Destination)
	}
}
