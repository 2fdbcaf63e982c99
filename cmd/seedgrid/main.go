package main

import (
	"context"

	"github.com/joho/godotenv"

	"floorgrid/internal/domain"
	"floorgrid/internal/infra"
	"floorgrid/internal/sqlinline"
)

// seedgrid populates the full three-tier cell inventory for the configured
// rectangles and inserts the singleton custom-amount pool row. Existing
// rows are left untouched, so re-running is safe.
func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	runner := infra.NewSQLRunner(dbpool, logger)

	inserted := 0
	for _, r := range cfg.GridRectangles {
		rect := string(r)
		for p := 1; p <= cfg.GridSquaresPerRectangle; p++ {
			refs := []domain.CellRef{
				{Rectangle: rect, Type: domain.CellFull, Position: p},
				{Rectangle: rect, Type: domain.CellHalf, Position: 2*p - 1},
				{Rectangle: rect, Type: domain.CellHalf, Position: 2 * p},
				{Rectangle: rect, Type: domain.CellQuarter, Position: 4*p - 3},
				{Rectangle: rect, Type: domain.CellQuarter, Position: 4*p - 2},
				{Rectangle: rect, Type: domain.CellQuarter, Position: 4*p - 1},
				{Rectangle: rect, Type: domain.CellQuarter, Position: 4 * p},
			}
			for _, ref := range refs {
				tag, err := runner.Exec(ctx, sqlinline.QInsertCell,
					ref.ID(), ref.Rectangle, ref.Position, string(ref.Type), ref.Type.AreaM2())
				if err != nil {
					logger.Fatal().Err(err).Str("cell_id", ref.ID()).Msg("failed to insert cell")
				}
				inserted += int(tag.RowsAffected())
			}
		}
	}

	if _, err := runner.Exec(ctx, sqlinline.QInsertPoolRow); err != nil {
		logger.Fatal().Err(err).Msg("failed to insert pool row")
	}

	logger.Info().
		Str("rectangles", cfg.GridRectangles).
		Int("squares_per_rectangle", cfg.GridSquaresPerRectangle).
		Int("cells_inserted", inserted).
		Msg("grid seeded")
}
