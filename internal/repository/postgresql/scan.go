package postgresql

import (
	"fmt"

	"github.com/cmlabs-hris/ponto-backend-go/internal/pkg/utils"
)

// TIME columns are read through to_char(col, 'HH24:MI') and written as text.

func clockArg(c *utils.ClockTime) *string {
	return utils.ClockString(c)
}

func scanClock(s *string) (*utils.ClockTime, error) {
	c, err := utils.ParseClockTimePtr(s)
	if err != nil {
		return nil, fmt.Errorf("invalid stored time %q: %w", *s, err)
	}
	return c, nil
}
