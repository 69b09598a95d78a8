// 命令行演示客户端：逐行输入命令，展示权威快照的被动镜像。
// 渲染层外置，这里只把快照原样打印出来。
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/palemoky/re-cards/internal/client"
	"github.com/palemoky/re-cards/internal/logger"
	"github.com/palemoky/re-cards/internal/protocol"
)

func main() {
	serverURL := flag.String("server", "ws://localhost:1780/ws", "服务器地址")
	name := flag.String("name", "Player", "玩家昵称")
	flag.Parse()

	if err := logger.Init(); err != nil {
		log.Printf("日志初始化失败: %v", err)
	}
	defer logger.Close()

	c := client.NewClient(*serverURL)

	c.OnState = func(snap *protocol.RoomSnapshot) {
		printSnapshot(snap)
	}
	c.OnReconnecting = func(attempt, max int) {
		fmt.Printf("… 正在重连 (%d/%d)\n", attempt, max)
	}
	c.OnReconnect = func() {
		fmt.Println("📶 重连成功")
	}
	c.OnClose = func() {
		fmt.Println("连接已关闭")
		os.Exit(0)
	}

	if err := c.Connect(); err != nil {
		log.Fatalf("连接服务器失败: %v", err)
	}
	c.StartHeartbeat()

	fmt.Println("命令: create | join <code> | ready | unready | endturn | reset | quit")

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "create":
			_ = c.CreateRoom(*name, func(res *protocol.AckPayload) {
				if !res.Ok {
					fmt.Printf("创建失败: %s\n", res.Reason)
					return
				}
				fmt.Printf("房间已创建: %s\n", res.Code)
			})

		case "join":
			if len(fields) < 2 {
				fmt.Println("用法: join <code>")
				continue
			}
			_ = c.JoinRoom(fields[1], *name, func(res *protocol.AckPayload) {
				if !res.Ok {
					fmt.Printf("加入失败: %s\n", res.Reason)
				}
			})

		case "ready", "unready":
			ready := fields[0] == "ready"
			if err := c.SetReady(ready, func(res *protocol.AckPayload) {
				if !res.Ok {
					fmt.Printf("准备失败: %s\n", res.Reason)
				}
			}); err != nil {
				fmt.Println(err)
			}

		case "endturn":
			if err := c.EndTurn(func(res *protocol.AckPayload) {
				if !res.Ok {
					fmt.Printf("结束回合失败: %s\n", res.Reason)
				}
			}); err != nil {
				fmt.Println(err)
			}

		case "reset":
			c.Reset()
			fmt.Println("本地视图已清空")

		case "quit":
			c.Close()
			return

		default:
			fmt.Println("未知命令")
		}
	}
}

func printSnapshot(snap *protocol.RoomSnapshot) {
	fmt.Printf("房间 %s [%s]\n", snap.Code, snap.Status)
	for i, p := range snap.Players {
		mark := "⏳"
		if p.Ready {
			mark = "✅"
		}
		conn := ""
		if !p.Connected {
			conn = "（掉线）"
		}
		fmt.Printf("  %d. %s %s%s\n", i, p.Name, mark, conn)
	}
	if snap.Match != nil {
		fmt.Printf("  回合 %d | 行动位 %d | 种子 %d\n",
			snap.Match.Turn, snap.Match.Active, snap.Match.Seed)
	}
}
