package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/XSAM/otelsql"
	"github.com/lib/pq"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/patrickwarner/openmediaplan/internal/models"
)

// Postgres wraps a postgres DB connection.
type Postgres struct {
	DB *sql.DB
}

// schemaSQL sets up the necessary tables if they don't exist.
const schemaSQL = `CREATE TABLE IF NOT EXISTS rate_card_entries (
    id SERIAL PRIMARY KEY,
    version TEXT NOT NULL,
    publication TEXT NOT NULL,
    ad_type TEXT NOT NULL,
    position TEXT NOT NULL,
    size TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    price DOUBLE PRECISION NOT NULL CHECK (price >= 0),
    ordering INT NOT NULL
);

CREATE TABLE IF NOT EXISTS campaigns (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    client TEXT NOT NULL,
    start_date DATE NOT NULL,
    end_date DATE NOT NULL,
    budget DOUBLE PRECISION NOT NULL DEFAULT 0,
    status TEXT NOT NULL DEFAULT 'draft',
    created_by TEXT NOT NULL DEFAULT '',
    total_cost DOUBLE PRECISION NOT NULL DEFAULT 0,
    total_insertions INT NOT NULL DEFAULT 0,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS placements (
    id TEXT PRIMARY KEY,
    campaign_id TEXT NOT NULL REFERENCES campaigns(id) ON DELETE CASCADE,
    publication TEXT NOT NULL,
    ad_type TEXT NOT NULL,
    position TEXT NOT NULL,
    size TEXT NOT NULL,
    dates TEXT[] NOT NULL,
    quantity INT NOT NULL,
    discount DOUBLE PRECISION NOT NULL DEFAULT 0,
    unit_price DOUBLE PRECISION NOT NULL,
    total_price DOUBLE PRECISION NOT NULL,
    discount_amount DOUBLE PRECISION NOT NULL,
    final_price DOUBLE PRECISION NOT NULL,
    notes TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_rate_card_entries_ordering ON rate_card_entries (ordering);
CREATE INDEX IF NOT EXISTS idx_placements_campaign_id ON placements (campaign_id);
CREATE INDEX IF NOT EXISTS idx_campaigns_created_at ON campaigns (created_at DESC);
`

// InitPostgres connects to Postgres with connection pooling configuration.
func InitPostgres(dsn string, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) (*Postgres, error) {
	driverName, err := otelsql.Register("postgres",
		otelsql.WithAttributes(
			attribute.String("db.system", "postgresql"),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("register otelsql: %w", err)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres open: %w", err)
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)
	db.SetConnMaxIdleTime(connMaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	p := &Postgres{DB: db}
	if err := p.ensureSchema(ctx); err != nil {
		return nil, err
	}
	zap.L().Info("Connected to Postgres with connection pooling",
		zap.Int("max_open_conns", maxOpenConns),
		zap.Int("max_idle_conns", maxIdleConns),
		zap.Duration("conn_max_lifetime", connMaxLifetime))
	return p, nil
}

// Close terminates the Postgres connection.
func (p *Postgres) Close() {
	if p != nil && p.DB != nil {
		if err := p.DB.Close(); err != nil {
			zap.L().Error("postgres close", zap.Error(err))
		}
	}
}

func (p *Postgres) ensureSchema(ctx context.Context) error {
	if _, err := p.DB.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// rateCardRow is one flattened rate card entry as stored in rate_card_entries.
type rateCardRow struct {
	Version     string
	Publication string
	AdType      string
	Position    string
	Size        string
	Description string
	Price       float64
}

// flattenRateCards turns set into rows in rate card order.
func flattenRateCards(set models.RateCardSet) []rateCardRow {
	rows := make([]rateCardRow, 0, set.EntryCount())
	for _, c := range set.Cards {
		for _, t := range c.AdTypes {
			for _, p := range t.Positions {
				for _, s := range p.Sizes {
					rows = append(rows, rateCardRow{
						Version:     set.Version,
						Publication: c.Publication,
						AdType:      t.Name,
						Position:    p.Name,
						Size:        s.Size,
						Description: s.Description,
						Price:       s.Price,
					})
				}
			}
		}
	}
	return rows
}

// groupRateCards rebuilds the nested rate card tree from ordered rows. The
// first occurrence of a publication, ad type or position fixes its order.
func groupRateCards(rows []rateCardRow) models.RateCardSet {
	var set models.RateCardSet
	pubIdx := make(map[string]int)
	for _, r := range rows {
		if set.Version == "" {
			set.Version = r.Version
		}
		pi, ok := pubIdx[r.Publication]
		if !ok {
			pi = len(set.Cards)
			pubIdx[r.Publication] = pi
			set.Cards = append(set.Cards, models.RateCard{Publication: r.Publication})
		}
		card := &set.Cards[pi]

		ti := -1
		for i := range card.AdTypes {
			if card.AdTypes[i].Name == r.AdType {
				ti = i
				break
			}
		}
		if ti < 0 {
			ti = len(card.AdTypes)
			card.AdTypes = append(card.AdTypes, models.AdType{Name: r.AdType})
		}
		adType := &card.AdTypes[ti]

		posIdx := -1
		for i := range adType.Positions {
			if adType.Positions[i].Name == r.Position {
				posIdx = i
				break
			}
		}
		if posIdx < 0 {
			posIdx = len(adType.Positions)
			adType.Positions = append(adType.Positions, models.Position{Name: r.Position})
		}
		pos := &adType.Positions[posIdx]
		pos.Sizes = append(pos.Sizes, models.AdSize{Size: r.Size, Price: r.Price, Description: r.Description})
	}
	return set
}

// LoadRateCards retrieves the stored rate card. An empty table yields a set
// with no cards.
func (p *Postgres) LoadRateCards(ctx context.Context) (models.RateCardSet, error) {
	rows, err := p.DB.QueryContext(ctx, `SELECT version, publication, ad_type, position, size, description, price FROM rate_card_entries ORDER BY ordering`)
	if err != nil {
		return models.RateCardSet{}, fmt.Errorf("query rate card: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var entries []rateCardRow
	for rows.Next() {
		var r rateCardRow
		if err := rows.Scan(&r.Version, &r.Publication, &r.AdType, &r.Position, &r.Size, &r.Description, &r.Price); err != nil {
			return models.RateCardSet{}, fmt.Errorf("scan rate card entry: %w", err)
		}
		entries = append(entries, r)
	}
	if err := rows.Err(); err != nil {
		return models.RateCardSet{}, fmt.Errorf("rows error: %w", err)
	}
	return groupRateCards(entries), nil
}

// ReplaceRateCards swaps the stored rate card for set in one transaction.
func (p *Postgres) ReplaceRateCards(ctx context.Context, set models.RateCardSet) (err error) {
	tx, err := p.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin rate card tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM rate_card_entries`); err != nil {
		return fmt.Errorf("clear rate card: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO rate_card_entries (version, publication, ad_type, position, size, description, price, ordering) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`)
	if err != nil {
		return fmt.Errorf("prepare rate card insert: %w", err)
	}
	defer func() {
		_ = stmt.Close()
	}()
	for i, r := range flattenRateCards(set) {
		if _, err = stmt.ExecContext(ctx, r.Version, r.Publication, r.AdType, r.Position, r.Size, r.Description, r.Price, i); err != nil {
			return fmt.Errorf("insert rate card entry %s/%s/%s/%s: %w", r.Publication, r.AdType, r.Position, r.Size, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit rate card: %w", err)
	}
	return nil
}

// CampaignStore returns a models.CampaignStore backed by this connection.
func (p *Postgres) CampaignStore() *PostgresCampaignStore {
	return &PostgresCampaignStore{db: p.DB}
}

// PostgresCampaignStore implements models.CampaignStore on the campaigns and
// placements tables.
type PostgresCampaignStore struct {
	db *sql.DB
}

const campaignColumns = `id, name, client, start_date, end_date, budget, status, created_by, total_cost, total_insertions, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCampaign(s rowScanner) (models.Campaign, error) {
	var c models.Campaign
	var status string
	err := s.Scan(&c.ID, &c.Name, &c.Client, &c.StartDate, &c.EndDate, &c.Budget, &status,
		&c.CreatedBy, &c.TotalCost, &c.TotalInsertions, &c.CreatedAt, &c.UpdatedAt)
	c.Status = models.CampaignStatus(status)
	return c, err
}

func (s *PostgresCampaignStore) ListCampaigns(ctx context.Context) ([]models.Campaign, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+campaignColumns+` FROM campaigns ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("query campaigns: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()
	cs := make([]models.Campaign, 0)
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, fmt.Errorf("scan campaign: %w", err)
		}
		cs = append(cs, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return cs, nil
}

func (s *PostgresCampaignStore) GetCampaign(ctx context.Context, id string) (*models.Campaign, error) {
	c, err := scanCampaign(s.db.QueryRowContext(ctx, `SELECT `+campaignColumns+` FROM campaigns WHERE id=$1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get campaign: %w", err)
	}
	return &c, nil
}

func (s *PostgresCampaignStore) CreateCampaign(ctx context.Context, c *models.Campaign) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO campaigns (`+campaignColumns+`) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		c.ID, c.Name, c.Client, c.StartDate, c.EndDate, c.Budget, string(c.Status), c.CreatedBy,
		c.TotalCost, c.TotalInsertions, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert campaign: %w", err)
	}
	return nil
}

func (s *PostgresCampaignStore) UpdateCampaign(ctx context.Context, c *models.Campaign) error {
	res, err := s.db.ExecContext(ctx, `UPDATE campaigns SET name=$1, client=$2, start_date=$3, end_date=$4, budget=$5, status=$6, created_by=$7, updated_at=$8 WHERE id=$9`,
		c.Name, c.Client, c.StartDate, c.EndDate, c.Budget, string(c.Status), c.CreatedBy, c.UpdatedAt, c.ID)
	if err != nil {
		return fmt.Errorf("update campaign: %w", err)
	}
	return expectOneRow(res)
}

// DeleteCampaign removes a campaign; its placements go with it through the
// ON DELETE CASCADE constraint.
func (s *PostgresCampaignStore) DeleteCampaign(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM campaigns WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete campaign: %w", err)
	}
	return expectOneRow(res)
}

// inCampaignTx runs fn in a transaction holding the row lock of the
// campaign, then refreshes the campaign totals before committing. Writers
// on the same campaign are serialized, so each totals update sees every
// placement committed before it.
func (s *PostgresCampaignStore) inCampaignTx(ctx context.Context, campaignID string, fn func(tx *sql.Tx) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var locked string
	err = tx.QueryRowContext(ctx, `SELECT id FROM campaigns WHERE id=$1 FOR UPDATE`, campaignID).Scan(&locked)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("lock campaign: %w", err)
	}
	if err = fn(tx); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, refreshTotalsSQL, campaignID); err != nil {
		return fmt.Errorf("refresh campaign totals: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

const refreshTotalsSQL = `UPDATE campaigns SET
    total_cost = (SELECT COALESCE(SUM(final_price), 0) FROM placements WHERE campaign_id=$1),
    total_insertions = (SELECT COALESCE(SUM(quantity * cardinality(dates)), 0) FROM placements WHERE campaign_id=$1),
    updated_at = NOW()
WHERE id=$1`

// placementCampaign returns the campaign owning placement id.
func (s *PostgresCampaignStore) placementCampaign(ctx context.Context, id string) (string, error) {
	var campaignID string
	err := s.db.QueryRowContext(ctx, `SELECT campaign_id FROM placements WHERE id=$1`, id).Scan(&campaignID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", models.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get placement campaign: %w", err)
	}
	return campaignID, nil
}

const placementColumns = `id, campaign_id, publication, ad_type, position, size, dates, quantity, discount, unit_price, total_price, discount_amount, final_price, notes`

func scanPlacement(s rowScanner) (models.Placement, error) {
	var pl models.Placement
	var dates []string
	if err := s.Scan(&pl.ID, &pl.CampaignID, &pl.Publication, &pl.AdType, &pl.Position, &pl.Size,
		pq.Array(&dates), &pl.Quantity, &pl.Discount, &pl.UnitPrice, &pl.TotalPrice,
		&pl.DiscountAmount, &pl.FinalPrice, &pl.Notes); err != nil {
		return pl, err
	}
	parsed, err := parseDates(dates)
	if err != nil {
		return pl, err
	}
	pl.Dates = parsed
	return pl, nil
}

func (s *PostgresCampaignStore) ListPlacements(ctx context.Context, campaignID string) ([]models.Placement, error) {
	var exists bool
	if err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM campaigns WHERE id=$1)`, campaignID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check campaign: %w", err)
	}
	if !exists {
		return nil, models.ErrNotFound
	}

	rows, err := s.db.QueryContext(ctx, `SELECT `+placementColumns+` FROM placements WHERE campaign_id=$1 ORDER BY id`, campaignID)
	if err != nil {
		return nil, fmt.Errorf("query placements: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()
	pls := make([]models.Placement, 0)
	for rows.Next() {
		pl, err := scanPlacement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan placement: %w", err)
		}
		pls = append(pls, pl)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return pls, nil
}

func (s *PostgresCampaignStore) GetPlacement(ctx context.Context, id string) (*models.Placement, error) {
	pl, err := scanPlacement(s.db.QueryRowContext(ctx, `SELECT `+placementColumns+` FROM placements WHERE id=$1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get placement: %w", err)
	}
	return &pl, nil
}

func (s *PostgresCampaignStore) CreatePlacement(ctx context.Context, pl *models.Placement) error {
	return s.inCampaignTx(ctx, pl.CampaignID, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO placements (`+placementColumns+`) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
			pl.ID, pl.CampaignID, pl.Publication, pl.AdType, pl.Position, pl.Size, pq.Array(formatDates(pl.Dates)),
			pl.Quantity, pl.Discount, pl.UnitPrice, pl.TotalPrice, pl.DiscountAmount, pl.FinalPrice, pl.Notes)
		if err != nil {
			return fmt.Errorf("insert placement: %w", err)
		}
		return nil
	})
}

// UpdatePlacement rewrites a placement. Its campaign never changes.
func (s *PostgresCampaignStore) UpdatePlacement(ctx context.Context, pl *models.Placement) error {
	campaignID, err := s.placementCampaign(ctx, pl.ID)
	if err != nil {
		return err
	}
	return s.inCampaignTx(ctx, campaignID, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `UPDATE placements SET publication=$1, ad_type=$2, position=$3, size=$4, dates=$5, quantity=$6, discount=$7, unit_price=$8, total_price=$9, discount_amount=$10, final_price=$11, notes=$12 WHERE id=$13 AND campaign_id=$14`,
			pl.Publication, pl.AdType, pl.Position, pl.Size, pq.Array(formatDates(pl.Dates)), pl.Quantity, pl.Discount,
			pl.UnitPrice, pl.TotalPrice, pl.DiscountAmount, pl.FinalPrice, pl.Notes, pl.ID, campaignID)
		if err != nil {
			return fmt.Errorf("update placement: %w", err)
		}
		return expectOneRow(res)
	})
}

func (s *PostgresCampaignStore) DeletePlacement(ctx context.Context, id string) error {
	campaignID, err := s.placementCampaign(ctx, id)
	if err != nil {
		return err
	}
	return s.inCampaignTx(ctx, campaignID, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM placements WHERE id=$1 AND campaign_id=$2`, id, campaignID)
		if err != nil {
			return fmt.Errorf("delete placement: %w", err)
		}
		return expectOneRow(res)
	})
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return models.ErrNotFound
	}
	return nil
}

// formatDates renders dates as ISO calendar days for the dates TEXT[] column.
func formatDates(dates []time.Time) []string {
	out := make([]string, len(dates))
	for i, d := range dates {
		out[i] = d.Format(time.DateOnly)
	}
	return out
}

func parseDates(values []string) ([]time.Time, error) {
	out := make([]time.Time, len(values))
	for i, v := range values {
		d, err := time.Parse(time.DateOnly, v)
		if err != nil {
			return nil, fmt.Errorf("parse placement date %q: %w", v, err)
		}
		out[i] = d
	}
	return out, nil
}

var _ models.CampaignStore = (*PostgresCampaignStore)(nil)
