package tracklist

import "github.com/charmbracelet/bubbles/key"

// KeyMap клавиши списка треков
type KeyMap struct {
	Up        key.Binding
	Down      key.Binding
	Play      key.Binding
	Pause     key.Binding
	Edit      key.Binding
	Delete    key.Binding
	Confirm   key.Binding
	Cancel    key.Binding
	Select    key.Binding
	SelectAll key.Binding
	PrevPage  key.Binding
	NextPage  key.Binding
	Create    key.Binding
	Retry     key.Binding
	Dismiss   key.Binding
	Filter    key.Binding
	Help      key.Binding
	Quit      key.Binding
}

// Keys клавиши списка по умолчанию
var Keys = KeyMap{
	Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "вверх")),
	Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "вниз")),
	Play:      key.NewBinding(key.WithKeys("enter", "p"), key.WithHelp("enter", "играть/стоп")),
	Pause:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "пауза")),
	Edit:      key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "изменить")),
	Delete:    key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "удалить")),
	Confirm:   key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "да")),
	Cancel:    key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n", "нет")),
	Select:    key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "выбрать")),
	SelectAll: key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "выбрать все")),
	PrevPage:  key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "пред. стр.")),
	NextPage:  key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "след. стр.")),
	Create:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "новый трек")),
	Retry:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "повторить")),
	Dismiss:   key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "скрыть ошибку")),
	Filter:    key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "фильтры")),
	Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "справка")),
	Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "выход")),
}

// ShortHelp реализует help.KeyMap
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Play, k.Select, k.Edit, k.Delete, k.Create, k.Filter, k.Help, k.Quit}
}

// FullHelp реализует help.KeyMap
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PrevPage, k.NextPage},
		{k.Play, k.Pause, k.Select, k.SelectAll},
		{k.Edit, k.Delete, k.Create, k.Filter},
		{k.Retry, k.Dismiss, k.Help, k.Quit},
	}
}
