package configwatcher

import (
	"context"
	"fmt"
	"lingua_edu_backend/internal/config"
	"lingua_edu_backend/pkg/logger"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// ConfigReloader 收到重新加载并校验通过的完整配置
type ConfigReloader func(cfg *config.Config)

const debounceInterval = time.Second

// WatchConfig 监听配置目录下的 config.yaml，写入后防抖重新加载。
// 阻塞直到 ctx 结束或 watcher 关闭。
func WatchConfig(ctx context.Context, configDir string, reloader ConfigReloader) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create config watcher: %w", err)
	}
	defer watcher.Close()

	absDir, err := filepath.Abs(configDir)
	if err != nil {
		return fmt.Errorf("resolve config dir: %w", err)
	}

	// 监听目录而不是文件，编辑器保存时常以重命名方式替换文件
	if err := watcher.Add(absDir); err != nil {
		return fmt.Errorf("watch config dir %s: %w", absDir, err)
	}
	target := filepath.Join(absDir, "config.yaml")

	timer := time.NewTimer(0)
	<-timer.C
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				// 防抖处理
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(debounceInterval)
			}
		case <-timer.C:
			newCfg, err := config.LoadConfig(configDir)
			if err != nil {
				logger.Log.Error("Failed to reload config", zap.Error(err))
				continue
			}
			logger.Log.Info("Config reloaded", zap.String("path", target))
			reloader(newCfg)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Log.Error("Config watcher error", zap.Error(err))
		}
	}
}
