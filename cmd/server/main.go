// inventory360のエントリーポイント。
// サブコマンド（serve / migrate / healthcheck）はinternal/appで解釈する。
package main

import (
	"fmt"
	"os"

	"github.com/wildlifesos/inventory360/internal/app"
)

func main() {
	if err := app.Run(os.Stdout, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "inventory360: %v\n", err)
		os.Exit(1)
	}
}
