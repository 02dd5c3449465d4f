package service

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aman-churiwal/mailing-lists/internal/activity"
	"github.com/aman-churiwal/mailing-lists/internal/i18n"
	"github.com/aman-churiwal/mailing-lists/internal/metrics"
	"github.com/aman-churiwal/mailing-lists/internal/models"
	"github.com/gosimple/slug"
	"go.uber.org/zap"
)

const (
	FormatCSV = "csv"
	FormatTXT = "txt"

	exportDateLayout     = "2006-01-02 15:04:05"
	exportFilenameLayout = "2006-01-02-150405"
	utf8BOM              = "\xEF\xBB\xBF"
)

var ErrInvalidFormat = errors.New("invalid export format")

// ExportParamsError carries every failed export parameter check.
type ExportParamsError struct {
	Errors []error
}

func (e *ExportParamsError) Error() string {
	return errors.Join(e.Errors...).Error()
}

func (e *ExportParamsError) Unwrap() []error {
	return e.Errors
}

// Export is a prepared subscriber download.
type Export struct {
	Format      string
	Filename    string
	List        *models.List
	Subscribers []models.Subscriber
	GeneratedAt time.Time
}

type ExportService struct {
	subscribers SubscriberStore
	lists       ListStore
	logs        *activity.Logs
	logger      *zap.Logger
	now         func() time.Time
}

func NewExportService(subscribers SubscriberStore, lists ListStore, logs *activity.Logs, logger *zap.Logger) *ExportService {
	return &ExportService{
		subscribers: subscribers,
		lists:       lists,
		logs:        logs,
		logger:      logger.Named("export"),
		now:         time.Now,
	}
}

// ValidateParams checks the format and, when listID > 0, that the list exists.
func (s *ExportService) ValidateParams(ctx context.Context, listID uint, format string) (*models.List, error) {
	var errs []error

	if format != FormatCSV && format != FormatTXT {
		errs = append(errs, ErrInvalidFormat)
	}

	var list *models.List
	if listID > 0 {
		found, err := s.lists.FindByID(ctx, listID)
		if err != nil {
			return nil, fmt.Errorf("failed to load list: %w", err)
		}
		if found == nil {
			errs = append(errs, ErrListNotFound)
		}
		list = found
	}

	if len(errs) > 0 {
		return nil, &ExportParamsError{Errors: errs}
	}

	return list, nil
}

// Prepare loads every subscriber in one pass. listID 0 exports all lists.
func (s *ExportService) Prepare(ctx context.Context, listID uint, format string, msgs *i18n.Catalog) (*Export, error) {
	list, err := s.ValidateParams(ctx, listID, format)
	if err != nil {
		return nil, err
	}

	subscribers, err := s.subscribers.FindAll(ctx, listID)
	if err != nil {
		return nil, fmt.Errorf("failed to load subscribers: %w", err)
	}

	now := s.now()
	return &Export{
		Format:      format,
		Filename:    exportFilename(list, format, now, msgs),
		List:        list,
		Subscribers: subscribers,
		GeneratedAt: now,
	}, nil
}

// Write serializes the export to w and records the download.
func (s *ExportService) Write(ctx context.Context, w io.Writer, export *Export, msgs *i18n.Catalog, userID, ip string) error {
	var err error
	switch export.Format {
	case FormatCSV:
		err = writeCSV(w, export.Subscribers, msgs)
	case FormatTXT:
		err = writeTXT(w, export.Subscribers, msgs)
	default:
		return ErrInvalidFormat
	}
	if err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}

	metrics.Exports.WithLabelValues(export.Format).Inc()

	listID := uint(0)
	if export.List != nil {
		listID = export.List.ID
	}
	details := fmt.Sprintf("list_id=%d format=%s count=%d", listID, export.Format, len(export.Subscribers))
	if err := s.logs.Record(ctx, activity.ActionExport, details, userID, ip); err != nil {
		s.logger.Warn("failed to record activity", zap.Error(err))
	}

	return nil
}

func exportFilename(list *models.List, format string, at time.Time, msgs *i18n.Catalog) string {
	name := msgs.T(i18n.ExportAllLists)
	if list != nil {
		name = slug.Make(list.Name)
	}
	return fmt.Sprintf("%s-%s-%s.%s", msgs.T(i18n.ExportFilePrefix), name, at.Format(exportFilenameLayout), format)
}

func header(msgs *i18n.Catalog) []string {
	return []string{
		msgs.T(i18n.ColumnName),
		msgs.T(i18n.ColumnSurname),
		msgs.T(i18n.ColumnEmail),
		msgs.T(i18n.ColumnDate),
		msgs.T(i18n.ColumnLists),
	}
}

func row(sub models.Subscriber) []string {
	return []string{
		sub.Name,
		sub.Surname,
		sub.Email,
		sub.SubscribedAt.Format(exportDateLayout),
		strings.Join(sub.ListNames(), "; "),
	}
}

func writeCSV(w io.Writer, subscribers []models.Subscriber, msgs *i18n.Catalog) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	cw.Comma = ';'

	if err := cw.Write(header(msgs)); err != nil {
		return err
	}
	for _, sub := range subscribers {
		if err := cw.Write(row(sub)); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// writeTXT emits one labelled block per subscriber, blocks separated by a blank line.
func writeTXT(w io.Writer, subscribers []models.Subscriber, msgs *i18n.Catalog) error {
	bw := bufio.NewWriter(w)
	labels := header(msgs)

	for i, sub := range subscribers {
		if i > 0 {
			if _, err := bw.WriteString("\n"); err != nil {
				return err
			}
		}
		for j, value := range row(sub) {
			if _, err := fmt.Fprintf(bw, "%s: %s\n", labels[j], value); err != nil {
				return err
			}
		}
	}

	return bw.Flush()
}
