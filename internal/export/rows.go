package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"repairdesk-service/internal/model"
	"repairdesk-service/internal/service"
)

const dateLayout = "02/01/2006"
const timeLayout = "02/01/2006 15:04:05"

// RegistryHeaders and RegistryRows produce the registry dump table.
var RegistryHeaders = []string{
	"Ticket ID", "Customer Name", "Mobile", "Email", "Device Brand", "Device Model",
	"Problem", "Priority", "Status", "Estimated Cost", "Final Amount",
	"Payment Status", "Registered Date", "Updated Date",
}

func RegistryRows(tickets []model.Ticket) [][]string {
	rows := make([][]string, 0, len(tickets))
	for i := range tickets {
		t := &tickets[i]
		rows = append(rows, []string{
			t.TicketID,
			t.CustomerName,
			t.CustomerMobile,
			t.CustomerEmail,
			t.DeviceBrand,
			t.DeviceModel,
			t.DeviceProblem,
			string(t.Priority),
			string(t.Status),
			fmt.Sprintf("%.2f", t.EstimatedCost),
			fmt.Sprintf("%.2f", t.FinalAmount),
			string(t.PaymentStatus),
			t.CreatedAt.Format(dateLayout),
			t.UpdatedAt.Format(dateLayout),
		})
	}
	return rows
}

var HandoveredHeaders = []string{
	"Ticket ID", "Customer Name", "Phone", "Device", "Issue",
	"Service Cost", "Payment Method", "Collected At", "Revenue",
}

func HandoveredRows(tickets []model.Ticket) [][]string {
	rows := make([][]string, 0, len(tickets))
	for i := range tickets {
		t := &tickets[i]
		collectedAt := ""
		if t.PaymentCollectedAt != nil {
			collectedAt = t.PaymentCollectedAt.Format(timeLayout)
		}
		amount := t.FinalAmount
		if amount == 0 {
			amount = t.EstimatedCost
		}
		rows = append(rows, []string{
			t.TicketID,
			t.CustomerName,
			t.CustomerMobile,
			t.DeviceInfo(),
			t.DeviceProblem,
			fmt.Sprintf("%.2f", t.ServiceCost),
			string(t.PaymentMethod),
			collectedAt,
			fmt.Sprintf("%.2f", amount),
		})
	}
	return rows
}

var ReturnedHeaders = []string{
	"Ticket ID", "Customer Name", "Phone", "Device", "Problem", "Return Reason", "Return Time",
}

func ReturnedRows(tickets []model.Ticket) [][]string {
	rows := make([][]string, 0, len(tickets))
	for i := range tickets {
		t := &tickets[i]
		returnedAt := ""
		if t.ReturnAt != nil {
			returnedAt = t.ReturnAt.Format(timeLayout)
		}
		rows = append(rows, []string{
			t.TicketID,
			t.CustomerName,
			t.CustomerMobile,
			t.DeviceInfo(),
			t.DeviceProblem,
			t.ReturnReason,
			returnedAt,
		})
	}
	return rows
}

var PaymentHeaders = []string{
	"Time", "Ticket ID", "Customer Name", "Device", "Amount", "Method", "Type", "Notes",
}

func PaymentRows(entries []model.PaymentLog) [][]string {
	rows := make([][]string, 0, len(entries))
	for i := range entries {
		e := &entries[i]
		rows = append(rows, []string{
			e.Timestamp.Format(timeLayout),
			e.TicketID,
			e.CustomerName,
			e.DeviceInfo,
			fmt.Sprintf("%.2f", e.Amount),
			string(e.Method),
			string(e.Type),
			e.Notes,
		})
	}
	return rows
}

// WriteFullReport writes the accounting dump: a prose summary block followed
// by the handover and return tables.
func WriteFullReport(w io.Writer, shopName string, report *service.DailyReport, generatedAt time.Time) error {
	var b strings.Builder
	s := report.Summary

	fmt.Fprintf(&b, "%s - Daily Report - %s\n\n", shopName, report.Date)
	b.WriteString("DAILY SUMMARY\n")
	fmt.Fprintf(&b, "Total Revenue,%.2f\n", s.TotalRevenue)
	fmt.Fprintf(&b, "Cash Revenue,%.2f\n", s.CashRevenue)
	fmt.Fprintf(&b, "Digital Revenue,%.2f\n", s.OnlineRevenue+s.CardRevenue)
	fmt.Fprintf(&b, "Total Handovers,%d\n", s.TotalHandovers)
	fmt.Fprintf(&b, "Total Returns,%d\n", s.TotalReturns)
	fmt.Fprintf(&b, "Gross Profit,%.2f\n", s.GrossProfit)
	fmt.Fprintf(&b, "Profit Margin,%.1f%%\n", s.ProfitMargin)
	fmt.Fprintf(&b, "Average Ticket Value,%.0f\n", s.AverageTicketValue)
	fmt.Fprintf(&b, "Success Rate,%.1f%%\n", s.SuccessRate)
	fmt.Fprintf(&b, "Ledger Total,%.2f\n", report.Ledger.TotalAmount)
	if !report.Reconciliation.Balanced {
		fmt.Fprintf(&b, "Ledger Variance,%.2f\n", report.Reconciliation.Difference)
	}
	b.WriteString("\n")

	if _, err := io.WriteString(w, b.String()); err != nil {
		return err
	}

	if len(report.Handovered) > 0 {
		if _, err := io.WriteString(w, "HANDOVERED DEVICES\n"); err != nil {
			return err
		}
		if err := WriteCSV(w, HandoveredHeaders, HandoveredRows(report.Handovered)); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
	}

	if len(report.Returned) > 0 {
		if _, err := io.WriteString(w, "RETURNED DEVICES\n"); err != nil {
			return err
		}
		if err := WriteCSV(w, ReturnedHeaders, ReturnedRows(report.Returned)); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(w, "Report Generated: %s\n", generatedAt.Format(timeLayout))
	return err
}
