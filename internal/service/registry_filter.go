package service

import (
	"strings"
	"time"

	"repairdesk-service/internal/model"
)

type DateRange string

const (
	DateRangeAll       DateRange = "all"
	DateRangeToday     DateRange = "today"
	DateRangeYesterday DateRange = "yesterday"
	DateRangeWeek      DateRange = "week"
	DateRangeMonth     DateRange = "month"
	DateRangeCustom    DateRange = "custom"
)

// RegistryFilter is the filter panel of the registry view. Zero values mean
// "no constraint". StartDate/EndDate apply to the custom range only; a custom
// range missing either bound leaves the list unfiltered by date.
type RegistryFilter struct {
	DateRange DateRange
	StartDate *time.Time
	EndDate   *time.Time
	Status    string
	Priority  model.Priority
	Search    string
}

// FilterRegistry applies date-range, status, priority and free-text predicates
// over the in-memory ticket list, preserving the original order.
func FilterRegistry(tickets []model.Ticket, filter RegistryFilter, now time.Time) []model.Ticket {
	filtered := filterByDate(tickets, filter, now)

	if filter.Status != "" && filter.Status != "all" {
		needle := strings.ToLower(filter.Status)
		filtered = keep(filtered, func(t *model.Ticket) bool {
			return strings.Contains(strings.ToLower(string(t.Status)), needle)
		})
	}

	if filter.Priority != "" && filter.Priority != "all" {
		filtered = keep(filtered, func(t *model.Ticket) bool {
			return t.Priority == filter.Priority
		})
	}

	if search := strings.ToLower(strings.TrimSpace(filter.Search)); search != "" {
		filtered = keep(filtered, func(t *model.Ticket) bool {
			fields := []string{
				t.TicketID,
				t.CustomerName,
				t.CustomerMobile,
				t.DeviceBrand,
				t.DeviceModel,
				t.DeviceProblem,
			}
			for _, field := range fields {
				if strings.Contains(strings.ToLower(field), search) {
					return true
				}
			}
			return false
		})
	}

	return filtered
}

// filterByDate computes window boundaries from local wall-clock midnight. The
// end boundary is exclusive; "custom" extends the end date by a day so the
// chosen end date itself is included.
func filterByDate(tickets []model.Ticket, filter RegistryFilter, now time.Time) []model.Ticket {
	if filter.DateRange == "" || filter.DateRange == DateRangeAll {
		return tickets
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var start, end time.Time
	switch filter.DateRange {
	case DateRangeToday:
		start = today
		end = today.AddDate(0, 0, 1)
	case DateRangeYesterday:
		start = today.AddDate(0, 0, -1)
		end = today
	case DateRangeWeek:
		start = today.AddDate(0, 0, -7)
		end = today.AddDate(0, 0, 1)
	case DateRangeMonth:
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		end = start.AddDate(0, 1, 0)
	case DateRangeCustom:
		if filter.StartDate == nil || filter.EndDate == nil {
			return tickets
		}
		start = *filter.StartDate
		end = filter.EndDate.AddDate(0, 0, 1)
	default:
		return tickets
	}

	return keep(tickets, func(t *model.Ticket) bool {
		return !t.CreatedAt.Before(start) && t.CreatedAt.Before(end)
	})
}

func keep(tickets []model.Ticket, pred func(*model.Ticket) bool) []model.Ticket {
	var out []model.Ticket
	for i := range tickets {
		if pred(&tickets[i]) {
			out = append(out, tickets[i])
		}
	}
	return out
}
