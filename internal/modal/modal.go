// Package modal содержит состояние открытия диалогового окна
package modal

// State хранит признак открытого диалога. Нулевое значение: диалог закрыт.
type State struct {
	open bool
}

// Open открывает диалог
func (s *State) Open() { s.open = true }

// Close закрывает диалог
func (s *State) Close() { s.open = false }

// Toggle переключает состояние диалога
func (s *State) Toggle() { s.open = !s.open }

// IsOpen сообщает, открыт ли диалог
func (s State) IsOpen() bool { return s.open }
