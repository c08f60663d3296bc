package dto

import (
	"time"

	"github.com/ketsolab/ketoan/internal/core/domain"
)

// JournalLineResponse defines the data returned for one ledger line.
type JournalLineResponse struct {
	AccountCode string `json:"accountCode"`
	Debit       int64  `json:"debit"`
	Credit      int64  `json:"credit"`
	Memo        string `json:"memo,omitempty"`
}

// JournalEntryResponse defines the data returned for a ledger entry.
type JournalEntryResponse struct {
	EntryID    string                `json:"entryID"`
	Seq        int64                 `json:"seq"`
	SourceType domain.SourceType     `json:"sourceType"`
	SourceID   string                `json:"sourceID"`
	EntryDate  time.Time             `json:"entryDate"`
	PostedAt   time.Time             `json:"postedAt"`
	Memo       string                `json:"memo,omitempty"`
	Reversal   bool                  `json:"reversal"`
	Lines      []JournalLineResponse `json:"lines"`
}

// ToJournalEntryResponse converts a domain.JournalEntry to its DTO.
func ToJournalEntryResponse(e *domain.JournalEntry) JournalEntryResponse {
	lines := make([]JournalLineResponse, len(e.Lines))
	for i, l := range e.Lines {
		lines[i] = JournalLineResponse{
			AccountCode: l.AccountCode,
			Debit:       l.Debit,
			Credit:      l.Credit,
			Memo:        l.Memo,
		}
	}
	return JournalEntryResponse{
		EntryID:    e.EntryID,
		Seq:        e.Seq,
		SourceType: e.SourceType,
		SourceID:   e.SourceID,
		EntryDate:  e.EntryDate,
		PostedAt:   e.PostedAt,
		Memo:       e.Memo,
		Reversal:   e.Reversal,
		Lines:      lines,
	}
}

// ToJournalEntryResponses converts a slice of entries.
func ToJournalEntryResponses(entries []domain.JournalEntry) []JournalEntryResponse {
	res := make([]JournalEntryResponse, len(entries))
	for i := range entries {
		res[i] = ToJournalEntryResponse(&entries[i])
	}
	return res
}

// ListEntriesParams defines query parameters for ledger listings.
type ListEntriesParams struct {
	Limit     int     `form:"limit,default=20"`
	NextToken *string `form:"nextToken"`
}

// ListEntriesResponse wraps a page of ledger entries.
type ListEntriesResponse struct {
	Entries   []JournalEntryResponse `json:"entries"`
	NextToken *string                `json:"nextToken,omitempty"`
}
