package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		// Pipeline lifecycle (info)
		"Starting pipeline":                  "パイプラインを開始します",
		"Pipeline stopped":                   "パイプラインを停止しました",
		"Streaming %s to %s":                 "%s を %s へストリーミング中",
		"Interrupted, shutting down...":      "中断されました。シャットダウン中...",
		"Connected to display at %s":         "ディスプレイ %s に接続しました",

		// Capture component
		"Launching rendering surface at %dx%d": "描画サーフェスを %dx%d で起動中",
		"Navigating to %s":                     "%s へ移動中",
		"Skipping undecodable frame (%d consecutive): %s": "デコードできないフレームをスキップ (連続 %d 回): %s",

		// Transmit component
		"Connecting to %s (attempt %d)":                   "%s へ接続中 (試行 %d 回目)",
		"Connection to %s failed, retrying in %s: %s":     "%s への接続に失敗しました。%s 後に再試行します: %s",
		"Frame dropped while disconnected from %s":        "%s から切断中のためフレームを破棄しました",
		"Frame dropped, connection to %s lost: %s":        "接続 %s が失われたためフレームを破棄しました: %s",
		"Dropped %d stale frames before transmission":     "送信前に %d 件の古いフレームを破棄しました",

		// Errors
		"Failed to start frame source: %s": "フレームソースの起動に失敗しました: %s",
		"Pipeline failed: %s":              "パイプラインが失敗しました: %s",
	})
}
