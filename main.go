package main

import (
	editorApp "blockeditor/internal/app"
)

func main() {
	editorApp.ServeMCP()
}
