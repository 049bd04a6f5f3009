package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jwebster45206/han-inventor/internal/handlers"
	"github.com/jwebster45206/han-inventor/pkg/state"
	"github.com/muesli/reflow/wordwrap"
)

const (
	AgentName       = "工部"
	GuideName       = "老匠人"
	PlaceHolderText = "输入你的发明构想，或 /help 查看命令..."
)

// Transcript roles
const (
	roleUser   = "user"
	roleAgent  = "agent"
	roleGuide  = "guide"
	roleSystem = "system"
)

type transcriptEntry struct {
	role string
	text string
}

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	config       *ConsoleConfig
	api          *APIClient
	gameState    *state.GameState
	transcript   []transcriptEntry
	lastPrint    string
	chatViewport viewport.Model
	metaViewport viewport.Model
	textarea     textarea.Model
	ready        bool
	width        int
	height       int
	loading      bool

	// Quit confirmation state
	showQuitModal bool

	// Progress bar state
	progressTick int
}

// actionResultMsg carries the outcome of one API call back to Update.
type actionResultMsg struct {
	entries   []transcriptEntry
	gameState *state.GameState
	blueprint string
	err       error
}

type progressTickMsg struct{}

var (
	chatPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(1).
			PaddingLeft(3).
			PaddingRight(0)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(0).
			PaddingLeft(0).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")). // gold
			Bold(true)

	speakerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")). // purple
			Bold(true)

	agentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	guideStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("180")) // tan

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true).
			Align(lipgloss.Center)
)

var separatorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("240")) // dark grey

const helpText = `命令：
• 直接输入 - 按构想发明
• /quest [类别] - 领取机遇任务
• /guide <回答> - 与老匠人一问一答，首次可留空
• /forge - 以问答内容完成发明
• /status - 刷新国力与阶段
• /copy - 复制最近的发明图纸
• /reset - 重新开局
• Ctrl+C - 退出`

func NewConsoleUI(cfg *ConsoleConfig, api *APIClient, gs *state.GameState) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
	ta.Focus()
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = 1000
	ta.SetWidth(50)
	ta.SetHeight(3)
	ta.ShowLineNumbers = false

	chatVp := viewport.New(50, 20)
	chatVp.MouseWheelEnabled = true

	metaVp := viewport.New(20, 20)

	return ConsoleUI{
		config:       cfg,
		api:          api,
		gameState:    gs,
		textarea:     ta,
		chatViewport: chatVp,
		metaViewport: metaVp,
	}
}

func writeMetadata(gs *state.GameState) string {
	var content strings.Builder
	content.WriteString(titleStyle.Render("国势") + "\n\n")
	if gs == nil {
		content.WriteString("未载入\n")
		return content.String()
	}

	content.WriteString("存档:\n")
	content.WriteString(gs.ID.String()[:8] + "...\n\n")

	content.WriteString("章节:\n")
	content.WriteString(fmt.Sprintf("%s · 第%d阶段\n\n", gs.CurrentChapter, gs.SubStage))

	content.WriteString("国力:\n")
	content.WriteString(fmt.Sprintf("%d / %d\n\n", gs.NationalPower, gs.MaxNationalPower))

	content.WriteString("发明:\n")
	content.WriteString(fmt.Sprintf("%d 项\n", len(gs.InventionResults)))
	for _, name := range gs.RecentInventions(5) {
		content.WriteString("• " + name + "\n")
	}
	content.WriteString("\n")

	if gs.CurrentQuest != nil {
		content.WriteString("当前任务:\n")
		content.WriteString(gs.CurrentQuest.Quest.Title + "\n\n")
	}
	if gs.GuidedSession != nil && !gs.GuidedSession.Done() {
		content.WriteString(fmt.Sprintf("问答: 第%d问\n\n", gs.GuidedSession.Questions))
	}

	content.WriteString("Commands:\n")
	content.WriteString("• Ctrl+C: Quit\n")
	content.WriteString("• Enter: Send\n")
	content.WriteString("• /help: Help\n")

	return content.String()
}

// writeChatContent rebuilds the transcript for the current viewport width
func (m *ConsoleUI) writeChatContent() {
	chatWidth := m.chatViewport.Width - 6 // Account for left(3) + right(3) padding

	var content strings.Builder
	content.WriteString(titleStyle.Render("汉 朝 发 明 家") + "\n\n")
	content.WriteString("描述你的发明构想，工部会绘出图纸。输入 /help 查看全部命令。\n\n")
	content.WriteString(separatorStyle.Render(strings.Repeat("─", max(chatWidth-6, 1))) + "\n\n")

	for _, e := range m.transcript {
		content.WriteString(formatEntry(e, chatWidth) + "\n\n")
	}

	if m.loading {
		content.WriteString(m.renderProgressBar())
	}

	m.chatViewport.SetContent(content.String())
	m.chatViewport.GotoBottom()
}

func (m ConsoleUI) Init() tea.Cmd {
	return textarea.Blink
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		mvCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.chatViewport, vpCmd = m.chatViewport.Update(msg)
		m.textarea, tiCmd = m.textarea.Update(msg)
		m.metaViewport, mvCmd = m.metaViewport.Update(msg)
		return m, tea.Batch(tiCmd, vpCmd, mvCmd)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		chatWidth := int(float64(m.width)*0.72) - 4
		metaWidth := m.width - chatWidth - 6

		m.chatViewport.Width = chatWidth - 2
		m.chatViewport.Height = m.height - 7
		m.metaViewport.Width = metaWidth - 2
		m.metaViewport.Height = m.height - 4
		m.textarea.SetWidth(chatWidth - 4)

		m.ready = true
		m.writeChatContent()
		m.metaViewport.SetContent(writeMetadata(m.gameState))

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyEnter:
			if m.loading {
				return m, nil
			}

			input := strings.TrimSpace(m.textarea.Value())
			if input == "" {
				return m, nil
			}
			m.textarea.Reset()

			if strings.HasPrefix(input, "/") {
				return m.handleCommand(input)
			}

			m.transcript = append(m.transcript, transcriptEntry{role: roleUser, text: input})
			return m.startAction(m.invent(input))
		}

	case actionResultMsg:
		m.loading = false
		if msg.err != nil {
			m.transcript = append(m.transcript, transcriptEntry{role: roleSystem, text: "错误：" + msg.err.Error()})
		} else {
			m.transcript = append(m.transcript, msg.entries...)
		}
		if msg.gameState != nil {
			m.gameState = msg.gameState
		}
		if msg.blueprint != "" {
			m.lastPrint = msg.blueprint
		}
		m.writeChatContent()
		m.metaViewport.SetContent(writeMetadata(m.gameState))
		return m, nil

	case progressTickMsg:
		if m.loading {
			m.progressTick++
			m.writeChatContent()
			return m, progressTick()
		}
	}

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.chatViewport, vpCmd = m.chatViewport.Update(msg)
	m.metaViewport, mvCmd = m.metaViewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd, mvCmd)
}

// formatEntry wraps one transcript entry and prefixes its speaker.
func formatEntry(e transcriptEntry, width int) string {
	if width < 10 {
		width = 10
	}
	switch e.role {
	case roleUser:
		return userStyle.Render("你: ") + wordwrap.String(e.text, width-4)
	case roleGuide:
		return speakerStyle.Render(GuideName+": ") + guideStyle.Render(wordwrap.String(e.text, width-8))
	case roleSystem:
		return errorStyle.Render(wordwrap.String(e.text, width))
	default:
		return speakerStyle.Render(AgentName+": ") + agentStyle.Render(wordwrap.String(e.text, width-6))
	}
}

// formatBlueprint renders a blueprint as plain text, which is also what
// /copy places on the clipboard.
func formatBlueprint(bp *state.InventionBlueprint) string {
	if bp == nil {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "《%s》（%s）\n", bp.Name, bp.Category)
	b.WriteString(bp.Description + "\n")
	fmt.Fprintf(&b, "材料：%s\n", strings.Join(bp.Materials, "、"))
	fmt.Fprintf(&b, "影响：%s\n", bp.Impact)
	fmt.Fprintf(&b, "国力 +%d", bp.NationalPowerIncrease)
	return b.String()
}

func (m ConsoleUI) handleCommand(input string) (tea.Model, tea.Cmd) {
	name, arg, _ := strings.Cut(input, " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(name) {
	case "/help":
		m.transcript = append(m.transcript, transcriptEntry{role: roleAgent, text: helpText})
	case "/quest":
		m.transcript = append(m.transcript, transcriptEntry{role: roleUser, text: input})
		return m.startAction(m.quest(arg))
	case "/guide":
		if arg != "" {
			m.transcript = append(m.transcript, transcriptEntry{role: roleUser, text: arg})
		}
		return m.startAction(m.guide(arg))
	case "/forge":
		m.transcript = append(m.transcript, transcriptEntry{role: roleUser, text: input})
		return m.startAction(m.forge())
	case "/status":
		return m.startAction(m.refreshGameState())
	case "/copy":
		switch {
		case m.lastPrint == "":
			m.transcript = append(m.transcript, transcriptEntry{role: roleSystem, text: "还没有可复制的图纸"})
		default:
			if err := clipboard.WriteAll(m.lastPrint); err != nil {
				m.transcript = append(m.transcript, transcriptEntry{role: roleSystem, text: "复制失败：" + err.Error()})
			} else {
				m.transcript = append(m.transcript, transcriptEntry{role: roleAgent, text: "图纸已复制到剪贴板"})
			}
		}
	case "/reset":
		m.transcript = nil
		m.lastPrint = ""
		return m.startAction(m.reset())
	default:
		m.transcript = append(m.transcript, transcriptEntry{role: roleSystem, text: "未知命令：" + name})
	}
	m.writeChatContent()
	return m, nil
}

// startAction shows the progress bar while cmd runs.
func (m ConsoleUI) startAction(cmd tea.Cmd) (tea.Model, tea.Cmd) {
	m.loading = true
	m.progressTick = 0
	m.writeChatContent()
	return m, tea.Batch(cmd, progressTick())
}

func (m ConsoleUI) invent(idea string) tea.Cmd {
	api, id := m.api, m.gameState.ID
	return func() tea.Msg {
		resp, err := api.Invent(id, idea)
		return inventionResult(resp, err)
	}
}

func (m ConsoleUI) forge() tea.Cmd {
	api, id := m.api, m.gameState.ID
	return func() tea.Msg {
		resp, err := api.InventFromGuide(id)
		return inventionResult(resp, err)
	}
}

func inventionResult(resp *handlers.InventResponse, err error) tea.Msg {
	if err != nil {
		return actionResultMsg{err: err}
	}
	if resp.Blueprint == nil {
		return actionResultMsg{err: errors.New("empty blueprint"), gameState: resp.GameState}
	}
	plain := formatBlueprint(resp.Blueprint)
	text := plain
	if resp.ImageURL != "" {
		text += "\n图样：" + resp.ImageURL
	}
	return actionResultMsg{
		entries:   []transcriptEntry{{role: roleAgent, text: text}},
		gameState: resp.GameState,
		blueprint: plain,
	}
}

func (m ConsoleUI) quest(category string) tea.Cmd {
	api, id := m.api, m.gameState.ID
	return func() tea.Msg {
		resp, err := api.Quest(id, category)
		if err != nil {
			return actionResultMsg{err: err}
		}
		text := resp.Text
		if resp.Quest != nil && len(resp.Quest.InventionSuggestions) > 0 {
			text += "\n\n可尝试：" + strings.Join(resp.Quest.InventionSuggestions, "、")
		}
		return actionResultMsg{
			entries:   []transcriptEntry{{role: roleAgent, text: text}},
			gameState: resp.GameState,
		}
	}
}

func (m ConsoleUI) guide(message string) tea.Cmd {
	api, id := m.api, m.gameState.ID
	return func() tea.Msg {
		resp, err := api.Guide(id, message)
		if err != nil {
			return actionResultMsg{err: err}
		}
		text := resp.Question
		if resp.Done {
			text = "构想已经清楚了，输入 /forge 完成发明。"
		}
		gs, _ := api.GetGameState(id)
		return actionResultMsg{
			entries:   []transcriptEntry{{role: roleGuide, text: text}},
			gameState: gs,
		}
	}
}

func (m ConsoleUI) refreshGameState() tea.Cmd {
	api, id := m.api, m.gameState.ID
	return func() tea.Msg {
		gs, err := api.GetGameState(id)
		if err != nil {
			return actionResultMsg{err: err}
		}
		return actionResultMsg{
			entries: []transcriptEntry{{role: roleAgent, text: fmt.Sprintf("%s 第%d阶段，国力 %d/%d",
				gs.CurrentChapter, gs.SubStage, gs.NationalPower, gs.MaxNationalPower)}},
			gameState: gs,
		}
	}
}

func (m ConsoleUI) reset() tea.Cmd {
	api, id := m.api, m.gameState.ID
	return func() tea.Msg {
		gs, err := api.Reset(id)
		if err != nil {
			return actionResultMsg{err: err}
		}
		return actionResultMsg{
			entries:   []transcriptEntry{{role: roleAgent, text: "新的一局开始了：" + gs.CurrentChapter}},
			gameState: gs,
		}
	}
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc, tea.KeyEnter:
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
				m.textarea.Focus()
				return m, textarea.Blink
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("退出游戏？"))
	content.WriteString("\n\n")
	content.WriteString("进度已自动保存。存档编号：\n")
	if m.gameState != nil {
		content.WriteString(m.gameState.ID.String())
	}
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue, or Ctrl+C to force quit"))

	modal := modalStyle.Width(56).Render(content.String())

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showQuitModal {
		return m.renderQuitModal()
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	chatWidth := int(float64(m.width)*0.72) - 4
	metaWidth := m.width - chatWidth - 6

	chatPanel := chatPanelStyle.Width(chatWidth).Height(m.height - 3).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.chatViewport.View(),
			"",
			separatorStyle.Render(strings.Repeat("─", max(chatWidth-4, 1))),
			m.textarea.View(),
		),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, chatPanel, metaPanel)
}

// renderProgressBar creates an animated progress bar for loading states
func (m ConsoleUI) renderProgressBar() string {
	usable := m.chatViewport.Width - 6
	if usable <= 0 {
		usable = 30 // fallback before sizing
	}
	if usable > 80 {
		usable = 80
	} else if usable < 10 {
		usable = 10
	}

	const totalFrames = 40
	frame := m.progressTick % totalFrames
	filled := (frame * usable) / totalFrames

	var bar strings.Builder
	for i := 0; i < usable; i++ {
		if i < filled {
			bar.WriteString("█")
		} else if i == filled && frame%4 < 2 {
			bar.WriteString("▓")
		} else {
			bar.WriteString("░")
		}
	}
	return separatorStyle.Render(bar.String())
}

// progressTick creates a command that sends a progress tick message
func progressTick() tea.Cmd {
	return tea.Tick(time.Millisecond*200, func(time.Time) tea.Msg {
		return progressTickMsg{}
	})
}
