package cli

import (
	"context"
	"fmt"
)

// runBatch processes every reference in the input file in order. A failed item never
// stops the run.
func (a *App) runBatch(ctx context.Context, s session) (RunSummary, error) {
	var items []ItemResult

	err := a.inputReader.Read(s.cfg.InputFile, func(line string) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		item, processErr := a.processOne(ctx, s, line)
		if processErr != nil {
			item.Status = StatusFailed
			item.Reason = processErr.Error()
			s.logger.Debug("batch item failed", "ref", line, "error", processErr)
		}

		items = append(items, item)
		writeStatusLine(a.stdout, item)
		return nil
	})
	if err != nil {
		return BuildSummary(items), fmt.Errorf("read batch input file %q: %w", s.cfg.InputFile, err)
	}

	return BuildSummary(items), nil
}
