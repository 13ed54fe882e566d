// Command eclyon は表形式データの前処理とツリーアンサンブルの解釈を行う
package main

import "os"

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
