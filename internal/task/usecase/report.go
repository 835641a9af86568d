package usecase

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/taskgrid/taskgrid/internal/pkg/goerror"
	"github.com/taskgrid/taskgrid/internal/pkg/storage"
	"github.com/taskgrid/taskgrid/internal/shared/constant"
	"github.com/taskgrid/taskgrid/internal/task/entity"
)

type ReportGenerateInput struct {
	Kind  string `validate:"required,oneof=summary detailed"`
	Range string `validate:"required,oneof=week month quarter year"`
}

type ReportGenerateOutput struct {
	Filename  string
	CSV       []byte
	ObjectKey string
}

// ReportGenerate renders a CSV over the selected window and archives a copy
// in object storage before handing it back for download.
func (s *Usecase) ReportGenerate(ctx context.Context, in ReportGenerateInput) (*ReportGenerateOutput, error) {
	ctx, span := s.startSpan(ctx, "ReportGenerate")
	defer span.End()

	if _, err := s.requireRole(ctx, constant.RoleAdmin); err != nil {
		return nil, err
	}

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	now := s.clock.Now()
	since := reportSince(entity.ReportRange(in.Range), now)

	tasks, err := s.repoDB.GetTasksSince(ctx, since)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get tasks for report", "error", err)
		return nil, goerror.NewServer(err)
	}

	var data []byte
	switch entity.ReportKind(in.Kind) {
	case entity.ReportDetailed:
		data, err = renderDetailedCSV(tasks)
	default:
		data, err = renderSummaryCSV(tasks)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to render report csv", "error", err)
		return nil, goerror.NewServer(err)
	}

	filename := fmt.Sprintf("task-report-%s-%s-%s.csv", in.Kind, in.Range, now.Format("20060102-150405"))
	key := "reports/" + filename

	bucket := s.cfg.GetString("modules.task.report_bucket")
	if _, perr := s.storage.PutObject(ctx, bucket, key, bytes.NewReader(data), storage.PutOptions{
		Size:        int64(len(data)),
		ContentType: "text/csv",
	}); perr != nil {
		// The archive copy is secondary, the admin still gets the download.
		slog.WarnContext(ctx, "failed to archive report", "bucket", bucket, "key", key, "error", perr)
		key = ""
	}

	return &ReportGenerateOutput{
		Filename:  filename,
		CSV:       data,
		ObjectKey: key,
	}, nil
}

func reportSince(r entity.ReportRange, now time.Time) time.Time {
	switch r {
	case entity.RangeWeek:
		return now.AddDate(0, 0, -7)
	case entity.RangeMonth:
		return now.AddDate(0, -1, 0)
	case entity.RangeQuarter:
		return now.AddDate(0, -3, 0)
	default:
		return now.AddDate(-1, 0, 0)
	}
}

func renderSummaryCSV(tasks []entity.TaskWithNames) ([]byte, error) {
	var counts entity.StatusCounts
	perStudent := map[string]*entity.StatusCounts{}

	for _, t := range tasks {
		counts.Total++
		name := t.AssignedToName
		if name == "" {
			name = "(unassigned)"
		}
		sc, ok := perStudent[name]
		if !ok {
			sc = &entity.StatusCounts{}
			perStudent[name] = sc
		}
		sc.Total++

		switch t.Status {
		case entity.StatusPending:
			counts.Pending++
			sc.Pending++
		case entity.StatusInProgress:
			counts.InProgress++
			sc.InProgress++
		case entity.StatusCompleted:
			counts.Completed++
			sc.Completed++
		}
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	rows := [][]string{
		{"Metric", "Value"},
		{"Total Tasks", strconv.FormatInt(counts.Total, 10)},
		{"Pending", strconv.FormatInt(counts.Pending, 10)},
		{"In Progress", strconv.FormatInt(counts.InProgress, 10)},
		{"Completed", strconv.FormatInt(counts.Completed, 10)},
		{"Completion %", strconv.Itoa(counts.ProgressPct())},
		{},
		{"Student", "Total", "Pending", "In Progress", "Completed"},
	}
	for name, sc := range perStudent {
		rows = append(rows, []string{
			name,
			strconv.FormatInt(sc.Total, 10),
			strconv.FormatInt(sc.Pending, 10),
			strconv.FormatInt(sc.InProgress, 10),
			strconv.FormatInt(sc.Completed, 10),
		})
	}

	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func renderDetailedCSV(tasks []entity.TaskWithNames) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	rows := [][]string{{"ID", "Title", "Assigned To", "Created By", "Status", "Type", "Due Date", "Created At"}}
	for _, t := range tasks {
		due := ""
		if t.DueDate != nil {
			due = t.DueDate.Format("2006-01-02")
		}
		rows = append(rows, []string{
			strconv.FormatInt(t.ID, 10),
			t.Title,
			t.AssignedToName,
			t.CreatedByName,
			t.Status.String(),
			t.TaskType,
			due,
			t.CreatedAt.Format(time.RFC3339),
		})
	}

	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
