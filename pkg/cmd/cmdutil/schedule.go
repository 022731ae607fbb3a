package cmdutil

import (
	"github.com/robfig/cron/v3"
)

// the seconds field is optional, "*/30 * * * *" and "0 */30 * * * *" are both accepted
var scheduleParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// NewScheduler returns a stopped cron that calls job on the schedule spec.
func NewScheduler(spec string, job func()) (*cron.Cron, error) {
	c := cron.New(cron.WithParser(scheduleParser))
	if _, err := c.AddFunc(spec, job); err != nil {
		return nil, err
	}

	return c, nil
}
