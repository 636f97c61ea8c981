package app

// Command はtaskmanのサブコマンド。
type Command string

const (
	// CommandServe はAPIサーバーを起動する。引数なしの場合もこれになる。
	CommandServe Command = "serve"
	// CommandMigrate は未適用のマイグレーションを適用して終了する。
	CommandMigrate Command = "migrate"
	// CommandHealthcheck は起動中のサーバーの/healthを叩いて終了する。
	// distrolessイメージにはcurlがないため、Dockerのヘルスチェックから使う。
	CommandHealthcheck Command = "healthcheck"
)

var knownCommands = []Command{CommandServe, CommandMigrate, CommandHealthcheck}

// ParseCommand は先頭の引数をサブコマンドとして解釈する。2つ目以降の引数は無視する。
// 引数が空ならCommandServeとtrue、未知の名前ならCommandServeとfalseを返す。
func ParseCommand(args []string) (Command, bool) {
	if len(args) == 0 {
		return CommandServe, true
	}
	for _, c := range knownCommands {
		if string(c) == args[0] {
			return c, true
		}
	}
	return CommandServe, false
}
