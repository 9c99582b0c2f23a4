package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/konbelyavskyi/docdb/internal/utils"
	"github.com/konbelyavskyi/docdb/pkg/docdbclient"
)

func main() {
	flags := utils.HandleClientCLIInputs()

	client, err := docdbclient.Connect(docdbclient.WithHost(flags.Host), docdbclient.WithPort(flags.Port))
	if err != nil {
		fmt.Println("connect error:", err)
		os.Exit(1)
	}
	defer client.Close()

	fmt.Printf("Connected to %s:%d\n", flags.Host, flags.Port)
	fmt.Println("Type commands. 'help' for information or 'exit' to quit.")

	reader := bufio.NewReader(os.Stdin)

	for {
		fmt.Print("> ")

		line, err := reader.ReadString('\n')
		if err != nil {
			fmt.Println("input error:", err)
			return
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "exit" {
			return
		}

		cmd, id, data, err := utils.SplitCommandLine(line)
		if err != nil {
			fmt.Println("parse error:", err)
			continue
		}

		resp, err := client.Execute(cmd, id, data)
		if err != nil {
			fmt.Println("error:", err)
			continue
		}

		fmt.Println(string(resp.Data))
	}
}
