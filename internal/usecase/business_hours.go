package usecase

import "time"

// Window é uma janela [início, fim] em minutos do dia, inclusiva nas
// duas pontas: 540 = 09:00, 780 = 13:00.
type Window struct {
	Start int
	End   int
}

type Schedule map[time.Weekday][]Window

// Horário comercial das unidades. Domingo não tem janela: leads criados
// fora do horário ficam sem agente até o job de lote (ou ação manual).
var BusinessHours = Schedule{
	time.Monday:    {{9 * 60, 13 * 60}, {14 * 60, 19 * 60}},
	time.Tuesday:   {{9 * 60, 13 * 60}, {14 * 60, 19 * 60}},
	time.Wednesday: {{9 * 60, 13 * 60}, {14 * 60, 19 * 60}},
	time.Thursday:  {{9 * 60, 13 * 60}, {14 * 60, 19 * 60}},
	time.Friday:    {{9 * 60, 13 * 60}, {14 * 60, 19 * 60}},
	time.Saturday:  {{9 * 60, 13 * 60}},
}

// Janelas em que a varredura de reatribuição pode rodar. Mais estreitas
// que o horário comercial: uma de manhã, uma à tarde.
var ReassignmentWindows = Schedule{
	time.Monday:    {{9*60 + 30, 12 * 60}, {15 * 60, 18 * 60}},
	time.Tuesday:   {{9*60 + 30, 12 * 60}, {15 * 60, 18 * 60}},
	time.Wednesday: {{9*60 + 30, 12 * 60}, {15 * 60, 18 * 60}},
	time.Thursday:  {{9*60 + 30, 12 * 60}, {15 * 60, 18 * 60}},
	time.Friday:    {{9*60 + 30, 12 * 60}, {15 * 60, 18 * 60}},
}

func (s Schedule) Contains(now time.Time) bool {
	minute := now.Hour()*60 + now.Minute()
	for _, w := range s[now.Weekday()] {
		if minute >= w.Start && minute <= w.End {
			return true
		}
	}
	return false
}

// IsAssignable diz se um lead recém-criado pode ser atribuído agora.
func IsAssignable(now time.Time) bool {
	return BusinessHours.Contains(now)
}

func InReassignmentWindow(now time.Time) bool {
	return ReassignmentWindows.Contains(now)
}
