package dashboard

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"soul-lifter-go/internal/model"

	"github.com/spf13/cobra"
)

// typingDelay 回复逐字打印的间隔，模拟打字效果。
const typingDelay = 20 * time.Millisecond

// exportFileName 本地导出文件名，重复导出时覆盖。
const exportFileName = "chat_logs.json"

var rootCmd = &cobra.Command{
	Use:   "soul-lifter",
	Short: "Soul Lifter - 心理陪伴对话仪表盘客户端",
	Long: `Soul Lifter 仪表盘客户端

连接 Soul Lifter 后端进行对话，实时查看情绪分类结果，
支持情绪分布条形图与对话日志导出。

直接运行即可进入交互式对话。`,
	Run: runInteractive,
}

// Execute 执行根命令
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initClientConfig)

	// 全局参数
	rootCmd.PersistentFlags().StringP("server", "s", "", "服务器地址 (默认: http://localhost:5000)")
}

func initClientConfig() {
	if err := InitConfig(); err != nil {
		fmt.Fprintf(os.Stderr, "初始化配置失败: %v\n", err)
		os.Exit(1)
	}

	if server, _ := rootCmd.PersistentFlags().GetString("server"); server != "" {
		SetServerURL(server)
	}
}

// repl 持有一次交互式会话的全部状态。
type repl struct {
	client *APIClient
	// 本地对话记录与情绪计数，后端不可达时仍然保留
	messages []model.ChatMessage
	emotions map[string]int
}

// runInteractive 交互式主流程
func runInteractive(cmd *cobra.Command, args []string) {
	printBanner()

	client := connect()
	r := &repl{client: client, emotions: make(map[string]int)}

	fmt.Println("输入消息开始对话，/help 查看命令。")
	fmt.Println()

	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("你> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			fmt.Println()
			return
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		switch line {
		case "/quit", "/exit":
			fmt.Println("再见，记得照顾好自己。")
			return
		case "/help":
			printHelp()
		case "/reset":
			r.reset()
		case "/chart":
			r.chart()
		case "/export":
			r.export()
		default:
			r.chat(line)
		}
	}
}

// connect 复用已保存的会话，没有则向服务端申请新会话。
// 申请失败时以默认会话继续，不阻塞对话。
func connect() *APIClient {
	if token := GetSessionToken(); token != "" {
		fmt.Printf("已恢复会话: %s\n", GetSessionID())
		fmt.Println()
		return NewAPIClient(GetServerURL(), token)
	}

	client := NewAPIClient(GetServerURL(), "")
	sessionID, token, err := client.NewSession()
	if err != nil {
		fmt.Printf("⚠️  创建会话失败，将使用默认会话: %v\n", err)
		fmt.Println()
		return client
	}
	if err := SaveSession(sessionID, token); err != nil {
		fmt.Printf("⚠️  保存会话信息失败: %v\n", err)
	}
	fmt.Printf("新会话已创建: %s\n", sessionID)
	fmt.Println()
	return NewAPIClient(GetServerURL(), token)
}

func (r *repl) chat(message string) {
	resp, err := r.client.Chat(message)
	if err != nil {
		// 本地记录保持不变，用户可以稍后重试
		fmt.Printf("⚠️  Backend not responding: %v\n", err)
		return
	}

	r.messages = append(r.messages,
		model.ChatMessage{Role: "user", Content: message},
		model.ChatMessage{Role: "assistant", Content: resp.Response},
	)
	r.emotions[resp.Emotion]++

	fmt.Print("助手> ")
	typeOut(resp.Response)
	fmt.Printf("    [%s %.2f]\n\n", resp.Emotion, resp.Score)
}

func (r *repl) reset() {
	msg, err := r.client.Reset()
	if err != nil {
		fmt.Printf("⚠️  Backend not responding: %v\n", err)
		return
	}
	r.messages = nil
	r.emotions = make(map[string]int)
	fmt.Println(msg)
	fmt.Println()
}

// chart 优先使用服务端聚合（覆盖归档的历史轮次），失败时退回本地统计。
func (r *repl) chart() {
	counts := r.emotions
	if remote, err := r.client.Emotions(); err == nil && len(remote) > 0 {
		counts = make(map[string]int, len(remote))
		for _, c := range remote {
			counts[c.Emotion] = int(c.Count)
		}
	}

	fmt.Println("情绪分布:")
	fmt.Print(renderEmotionChart(counts))
	fmt.Println()
}

// export 将本地对话记录写入 chat_logs.json（覆盖），并尝试触发服务端导出。
func (r *repl) export() {
	if err := writeChatLog(exportFileName, r.messages); err != nil {
		fmt.Printf("⚠️  写入 %s 失败: %v\n", exportFileName, err)
		return
	}
	fmt.Printf("✅ 对话记录已导出到 %s（共 %d 条消息）\n", exportFileName, len(r.messages))

	if object, url, err := r.client.ExportRemote(); err == nil {
		fmt.Printf("✅ 服务端导出完成: %s\n", object)
		if url != "" {
			fmt.Printf("   下载链接: %s\n", url)
		}
	}
	fmt.Println()
}

// writeChatLog 将消息序列写为 JSON 数组文件，覆盖已有文件。
// 导出产物始终是数组：没有任何消息时写出 [] 而不是 null。
func writeChatLog(path string, messages []model.ChatMessage) error {
	if messages == nil {
		messages = []model.ChatMessage{}
	}
	data, err := json.MarshalIndent(messages, "", "    ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func typeOut(text string) {
	for _, r := range text {
		fmt.Print(string(r))
		time.Sleep(typingDelay)
	}
	fmt.Println()
}

func printBanner() {
	fmt.Println()
	fmt.Println("╔════════════════════════════════════════════════╗")
	fmt.Println("║        🧠 Soul Lifter 对话仪表盘                ║")
	fmt.Println("║                                                ║")
	fmt.Println("║   心理陪伴对话 · 情绪感知 · 日志导出             ║")
	fmt.Println("╚════════════════════════════════════════════════╝")
	fmt.Println()
}

func printHelp() {
	fmt.Println("可用命令:")
	fmt.Println("  /reset   重置当前会话")
	fmt.Println("  /chart   显示情绪分布条形图")
	fmt.Println("  /export  导出对话记录到 chat_logs.json")
	fmt.Println("  /quit    退出")
	fmt.Println()
}
