package booking

import (
	"rentops/internal/app/commands"
	"rentops/internal/app/queries"
)

// Register binds every lifecycle operation to the buses.
func Register(cmds *commands.InMemoryBus, qs *queries.InMemoryBus, l *Lifecycle) {
	commands.RegisterFunc(cmds, l.CreateBooking)
	commands.RegisterFunc(cmds, l.UpdateBooking)
	commands.RegisterFunc(cmds, l.ConvertHold)
	commands.RegisterFunc(cmds, l.CancelHold)
	commands.RegisterFunc(cmds, l.ExtendHold)
	commands.RegisterFunc(cmds, l.CancelBooking)
	commands.RegisterFunc(cmds, l.CompleteBooking)
	commands.RegisterFunc(cmds, l.BulkCancel)
	commands.RegisterFunc(cmds, l.BulkComplete)

	queries.RegisterFunc(qs, l.GetBooking)
	queries.RegisterFunc(qs, l.ListBookings)
}
