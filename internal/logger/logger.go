package logger

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"
)

const (
	logDirName = ".re-cards"
	logName    = "debug.log"

	// 超过此大小时滚动到带时间戳的备份文件
	maxLogSize = 10 * 1024 * 1024
)

var (
	debugLog *os.File
	logPath  string
)

// Init 初始化文件日志
// 终端客户端的 stdout 被交互占用，所有日志写到用户目录下的文件里
func Init() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("获取用户目录失败: %w", err)
	}

	logDir := filepath.Join(homeDir, logDirName)
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return fmt.Errorf("创建日志目录失败: %w", err)
	}

	logPath = filepath.Join(logDir, logName)
	if err := rotateIfNeeded(logDir); err != nil {
		return err
	}

	debugLog, err = os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("打开日志文件失败: %w", err)
	}

	log.SetOutput(debugLog)
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds | log.Lshortfile)

	LogInfo("日志已初始化: %s", logPath)
	return nil
}

// rotateIfNeeded 日志文件过大时滚动归档
func rotateIfNeeded(logDir string) error {
	info, err := os.Stat(logPath)
	if err != nil || info.Size() <= maxLogSize {
		return nil
	}

	backupPath := filepath.Join(logDir, fmt.Sprintf("%s.%d", logName, time.Now().Unix()))
	if err := os.Rename(logPath, backupPath); err != nil {
		return fmt.Errorf("日志滚动失败: %w", err)
	}
	return nil
}

// Close 关闭日志文件
func Close() {
	if debugLog != nil {
		_ = debugLog.Close()
	}
}

// LogInfo 记录普通日志
func LogInfo(format string, args ...interface{}) {
	log.Printf("[INFO] "+format, args...)
}

// LogError 记录错误日志
func LogError(format string, args ...interface{}) {
	log.Printf("[ERROR] "+format, args...)
}

// LogPanic 记录 panic 和调用栈
func LogPanic(r interface{}) {
	log.Printf("[PANIC] %v\n%s", r, debug.Stack())
}

// GetLogPath 当前日志文件路径
func GetLogPath() string {
	return logPath
}
