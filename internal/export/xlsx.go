package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"taskcal/internal/task"
	"taskcal/internal/view"
)

const (
	SheetName       = "Tasks"
	XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var xlsxHeader = []any{"ID", "Task", "Due", "Priority", "Status"}

// XLSX writes every task, sorted for display, as one sheet.
func XLSX(w io.Writer, tasks []task.Task, labels view.Labels) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}
	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return fmt.Errorf("open sheet: %w", err)
	}
	if err := sw.SetColWidth(2, 2, 40); err != nil {
		return fmt.Errorf("task column width: %w", err)
	}
	if err := sw.SetColWidth(3, 3, 18); err != nil {
		return fmt.Errorf("due column width: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	header := make([]any, len(xlsxHeader))
	for i, h := range xlsxHeader {
		header[i] = excelize.Cell{StyleID: bold, Value: h}
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	items := view.List(task.Snapshot{Tasks: tasks}, task.FilterAll, labels)
	for i, it := range items {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		status := "active"
		if it.Completed {
			status = "completed"
		}
		row := []any{fmt.Sprintf("%d", it.ID), it.Text, it.DueLabel, it.PriorityLabel, status}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush sheet: %w", err)
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
