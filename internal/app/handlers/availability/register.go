package availability

import (
	"rentops/internal/app/commands"
	"rentops/internal/app/queries"
)

func Register(cmds *commands.InMemoryBus, qs *queries.InMemoryBus, s *Service) {
	commands.RegisterFunc(cmds, s.Reconcile)
	queries.RegisterFunc(qs, s.GetCalendar)
}
