package domain

import (
	"strings"
	"testing"
)

func TestNewSyncRun(t *testing.T) {
	tests := []struct {
		name    string
		job     *SyncJob
		wantErr bool
	}{
		{"valid", NewSyncJob("sess-1", "pl-1", ""), false},
		{"nil job", nil, true},
		{"missing session", &SyncJob{JobID: "j1", SourcePlaylistID: "pl-1"}, true},
		{"missing playlist", &SyncJob{JobID: "j1", SessionID: "sess-1"}, true},
		{"missing job id", &SyncJob{SessionID: "sess-1", SourcePlaylistID: "pl-1"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			run, err := NewSyncRun(tt.job)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewSyncRun() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && run.Status != SyncStatusPending {
				t.Errorf("new run status = %v, want PENDING", run.Status)
			}
		})
	}
}

func TestSyncRun_Transitions(t *testing.T) {
	run, err := NewSyncRun(NewSyncJob("sess-1", "pl-1", ""))
	if err != nil {
		t.Fatal(err)
	}

	run.StartFetching()
	if run.Status != SyncStatusFetching {
		t.Errorf("status = %v, want FETCHING", run.Status)
	}

	run.StartCreating(10, "Road Trip")
	if run.Status != SyncStatusCreating || run.TotalTracks != 10 {
		t.Errorf("after StartCreating: status=%v total=%d", run.Status, run.TotalTracks)
	}
	if run.CollectionName != "Road Trip" {
		t.Errorf("collection name = %q, want source playlist name", run.CollectionName)
	}

	run.StartResolving("col-1", "https://example.com/col-1")
	if run.Status != SyncStatusResolving || run.CollectionID != "col-1" {
		t.Errorf("after StartResolving: status=%v id=%s", run.Status, run.CollectionID)
	}

	run.UpdateProgress(4, 3, 1)
	if run.Progress() != 40 {
		t.Errorf("Progress() = %d, want 40", run.Progress())
	}

	run.Complete()
	if !run.Status.IsTerminal() || run.CompletedAt == nil {
		t.Errorf("run not terminal after Complete: %+v", run)
	}
}

func TestSyncRun_TargetNameOverride(t *testing.T) {
	run, err := NewSyncRun(NewSyncJob("sess-1", "pl-1", "My Mix"))
	if err != nil {
		t.Fatal(err)
	}

	run.StartCreating(2, "Road Trip")
	if run.CollectionName != "My Mix" {
		t.Errorf("collection name = %q, want job override", run.CollectionName)
	}
}

func TestSyncReport_Conservation(t *testing.T) {
	run, _ := NewSyncRun(NewSyncJob("sess-1", "pl-1", ""))
	run.StartCreating(2, "Road Trip")
	run.StartResolving("col-1", "")
	run.UpdateProgress(2, 1, 1)
	run.Complete()

	report := NewSyncReport(run)
	if report.MatchedTracks+report.FailedTracks != report.TotalTracks {
		t.Errorf("conservation broken: %d + %d != %d",
			report.MatchedTracks, report.FailedTracks, report.TotalTracks)
	}
	if !strings.Contains(report.Message, "1 de 2") {
		t.Errorf("message %q does not state 1 de 2", report.Message)
	}
	if !report.Succeeded {
		t.Error("completed run reported as not succeeded")
	}
}

func TestNewFailedReport(t *testing.T) {
	run, _ := NewSyncRun(NewSyncJob("sess-1", "pl-1", ""))
	run.Fail("failed to fetch playlist")

	report := NewFailedReport(run, "failed to fetch playlist")
	if report.Succeeded || report.TotalTracks != 0 {
		t.Errorf("failed report = %+v", report)
	}
	if report.Message != "failed to fetch playlist" {
		t.Errorf("message = %q", report.Message)
	}
}

func TestSyncStatus_IsTerminal(t *testing.T) {
	for _, s := range []SyncStatus{SyncStatusPending, SyncStatusFetching, SyncStatusCreating, SyncStatusResolving} {
		if s.IsTerminal() {
			t.Errorf("%v reported terminal", s)
		}
	}
	if !SyncStatusCompleted.IsTerminal() || !SyncStatusFailed.IsTerminal() {
		t.Error("terminal statuses not reported terminal")
	}
}
