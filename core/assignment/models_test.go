package assignment

import (
	"testing"
	"time"
)

func TestStatusSubmit(t *testing.T) {
	tests := []struct {
		name    string
		status  Status
		want    Status
		wantErr error
	}{
		{name: "pending submits", status: StatusPending, want: StatusSubmitted},
		{name: "submitted stays submitted", status: StatusSubmitted, want: StatusSubmitted, wantErr: ErrAlreadySubmitted},
		{name: "overdue is never stored", status: StatusOverdue, want: StatusOverdue, wantErr: ErrAlreadySubmitted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.status.Submit()
			if err != tt.wantErr {
				t.Errorf("Submit() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Submit() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDeriveStatus(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name    string
		status  Status
		dueDate time.Time
		want    Status
	}{
		{name: "pending before due date", status: StatusPending, dueDate: now.Add(time.Hour), want: StatusPending},
		{name: "pending at due date", status: StatusPending, dueDate: now, want: StatusPending},
		{name: "pending past due date", status: StatusPending, dueDate: now.Add(-time.Second), want: StatusOverdue},
		{name: "submitted never goes overdue", status: StatusSubmitted, dueDate: now.Add(-time.Hour), want: StatusSubmitted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveStatus(tt.status, tt.dueDate, now); got != tt.want {
				t.Errorf("DeriveStatus() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestQueryFilterValidate(t *testing.T) {
	tests := []struct {
		name    string
		filter  QueryFilter
		wantErr bool
	}{
		{name: "empty filter"},
		{name: "scheduled", filter: QueryFilter{Published: PublishedScheduled}},
		{name: "ongoing, case-insensitive", filter: QueryFilter{Published: "ongoing"}},
		{name: "pending status", filter: QueryFilter{Status: StatusPending}},
		{name: "unknown published value", filter: QueryFilter{Published: "SOON"}, wantErr: true},
		{name: "unknown status value", filter: QueryFilter{Status: "LATE"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.filter.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
