package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ketsolab/ketoan/internal/apperrors"
	"github.com/ketsolab/ketoan/internal/core/domain"
	portsrepo "github.com/ketsolab/ketoan/internal/core/ports/repositories"
	"github.com/ketsolab/ketoan/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const entryColumns = `seq, entry_id, source_type, source_id, entry_date, posted_at, memo, reversal, created_at, created_by, last_updated_at, last_updated_by`

type PgxLedgerRepository struct {
	BaseRepository
}

func newPgxLedgerRepository(pool *pgxpool.Pool) portsrepo.LedgerRepositoryFacade {
	return &PgxLedgerRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.LedgerRepositoryFacade = (*PgxLedgerRepository)(nil)

func (r *PgxLedgerRepository) AppendEntry(ctx context.Context, entry domain.JournalEntry) (*domain.JournalEntry, error) {
	db := r.db(ctx)
	err := db.QueryRow(ctx, `
		INSERT INTO journal_entries (entry_id, source_type, source_id, entry_date, posted_at, memo, reversal, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING seq`,
		entry.EntryID, entry.SourceType, entry.SourceID, entry.EntryDate, entry.PostedAt, entry.Memo, entry.Reversal,
		entry.CreatedAt, entry.CreatedBy, entry.LastUpdatedAt, entry.LastUpdatedBy,
	).Scan(&entry.Seq)
	if err != nil {
		return nil, fmt.Errorf("failed to insert journal entry %s: %w", entry.EntryID, err)
	}

	for i, line := range entry.Lines {
		_, err := db.Exec(ctx, `
			INSERT INTO journal_lines (entry_seq, line_no, account_code, debit, credit, memo)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			entry.Seq, i+1, line.AccountCode, line.Debit, line.Credit, line.Memo,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to insert journal line %d of %s: %w", i+1, entry.EntryID, err)
		}
	}
	return &entry, nil
}

func (r *PgxLedgerRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	row := r.db(ctx).QueryRow(ctx, `SELECT `+entryColumns+` FROM journal_entries WHERE entry_id = $1`, entryID)
	entry, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: journal entry %s", apperrors.ErrNotFound, entryID)
		}
		return nil, fmt.Errorf("failed to query journal entry %s: %w", entryID, err)
	}
	if err := r.loadLines(ctx, []*domain.JournalEntry{&entry}); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *PgxLedgerRepository) FindEntriesBySource(ctx context.Context, sourceType domain.SourceType, sourceID string) ([]domain.JournalEntry, error) {
	rows, err := r.db(ctx).Query(ctx,
		`SELECT `+entryColumns+` FROM journal_entries WHERE source_type = $1 AND source_id = $2 ORDER BY seq`,
		sourceType, sourceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries for %s/%s: %w", sourceType, sourceID, err)
	}
	defer rows.Close()
	return r.collectWithLines(ctx, rows)
}

func (r *PgxLedgerRepository) ListEntries(ctx context.Context, limit int, nextToken *string) ([]domain.JournalEntry, *string, error) {
	afterSeq, err := decodeAfterSeq(nextToken)
	if err != nil {
		return nil, nil, err
	}

	rows, err := r.db(ctx).Query(ctx,
		`SELECT `+entryColumns+` FROM journal_entries WHERE seq > $1 ORDER BY seq LIMIT $2`,
		afterSeq, limit)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query journal entries: %w", err)
	}
	defer rows.Close()

	entries, err := r.collectWithLines(ctx, rows)
	if err != nil {
		return nil, nil, err
	}
	return entries, nextTokenFor(entries, limit), nil
}

func (r *PgxLedgerRepository) ListLinesByAccount(ctx context.Context, accountCode string, limit int, nextToken *string) ([]domain.JournalEntry, *string, error) {
	afterSeq, err := decodeAfterSeq(nextToken)
	if err != nil {
		return nil, nil, err
	}

	rows, err := r.db(ctx).Query(ctx, `
		SELECT `+entryColumns+` FROM journal_entries
		WHERE seq > $1 AND seq IN (SELECT entry_seq FROM journal_lines WHERE account_code = $2)
		ORDER BY seq LIMIT $3`,
		afterSeq, accountCode, limit)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query entries for account %s: %w", accountCode, err)
	}
	defer rows.Close()

	entries, err := r.collectWithLines(ctx, rows)
	if err != nil {
		return nil, nil, err
	}
	return entries, nextTokenFor(entries, limit), nil
}

func (r *PgxLedgerRepository) HasLinesForAccount(ctx context.Context, accountCode string) (bool, error) {
	var exists bool
	err := r.db(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM journal_lines WHERE account_code = $1)`, accountCode).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check lines for account %s: %w", accountCode, err)
	}
	return exists, nil
}

func (r *PgxLedgerRepository) SumByAccount(ctx context.Context, from, to time.Time) (map[string]domain.Movement, error) {
	rows, err := r.db(ctx).Query(ctx, `
		SELECT l.account_code, COALESCE(SUM(l.debit), 0), COALESCE(SUM(l.credit), 0)
		FROM journal_lines l
		JOIN journal_entries e ON e.seq = l.entry_seq
		WHERE ($1::timestamptz IS NULL OR e.entry_date >= $1)
		  AND ($2::timestamptz IS NULL OR e.entry_date <= $2)
		GROUP BY l.account_code`,
		nullableTime(from), nullableTime(to))
	if err != nil {
		return nil, fmt.Errorf("failed to sum ledger movement: %w", err)
	}
	defer rows.Close()

	sums := make(map[string]domain.Movement)
	for rows.Next() {
		var code string
		var m domain.Movement
		if err := rows.Scan(&code, &m.Debit, &m.Credit); err != nil {
			return nil, fmt.Errorf("failed to scan movement: %w", err)
		}
		sums[code] = m
	}
	return sums, rows.Err()
}

func (r *PgxLedgerRepository) collectWithLines(ctx context.Context, rows pgx.Rows) ([]domain.JournalEntry, error) {
	var entries []domain.JournalEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan journal entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	refs := make([]*domain.JournalEntry, len(entries))
	for i := range entries {
		refs[i] = &entries[i]
	}
	if err := r.loadLines(ctx, refs); err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *PgxLedgerRepository) loadLines(ctx context.Context, entries []*domain.JournalEntry) error {
	if len(entries) == 0 {
		return nil
	}
	seqs := make([]int64, len(entries))
	bySeq := make(map[int64]*domain.JournalEntry, len(entries))
	for i, e := range entries {
		seqs[i] = e.Seq
		bySeq[e.Seq] = e
	}

	rows, err := r.db(ctx).Query(ctx, `
		SELECT entry_seq, account_code, debit, credit, memo
		FROM journal_lines WHERE entry_seq = ANY($1) ORDER BY entry_seq, line_no`, seqs)
	if err != nil {
		return fmt.Errorf("failed to query journal lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var seq int64
		var line domain.JournalLine
		if err := rows.Scan(&seq, &line.AccountCode, &line.Debit, &line.Credit, &line.Memo); err != nil {
			return fmt.Errorf("failed to scan journal line: %w", err)
		}
		bySeq[seq].Lines = append(bySeq[seq].Lines, line)
	}
	return rows.Err()
}

func scanEntry(row pgx.Row) (domain.JournalEntry, error) {
	var e domain.JournalEntry
	err := row.Scan(&e.Seq, &e.EntryID, &e.SourceType, &e.SourceID, &e.EntryDate, &e.PostedAt, &e.Memo, &e.Reversal,
		&e.CreatedAt, &e.CreatedBy, &e.LastUpdatedAt, &e.LastUpdatedBy)
	return e, err
}

func decodeAfterSeq(nextToken *string) (int64, error) {
	if nextToken == nil || *nextToken == "" {
		return 0, nil
	}
	seq, err := pagination.DecodeSeqToken(*nextToken)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", apperrors.ErrValidation, err)
	}
	return seq, nil
}

func nextTokenFor(page []domain.JournalEntry, limit int) *string {
	if len(page) < limit || len(page) == 0 {
		return nil
	}
	token := pagination.EncodeSeqToken(page[len(page)-1].Seq)
	return &token
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
