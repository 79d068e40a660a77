package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var documentsCmd = &cobra.Command{
	Use:   "documents",
	Short: "Manage uploaded documents",
}

var uploadCmd = &cobra.Command{
	Use:   "upload [file-path]",
	Short: "Upload a PDF document",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		uploadFile(args[0])
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the uploaded documents",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		listDocuments()
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete [doc-id]",
	Short: "Delete a document and its chunks",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		deleteDocument(args[0])
	},
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the server status",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		getJSON("/api/health")
	},
}

func init() {
	rootCmd.AddCommand(documentsCmd)
	rootCmd.AddCommand(healthCmd)
	documentsCmd.AddCommand(uploadCmd)
	documentsCmd.AddCommand(listCmd)
	documentsCmd.AddCommand(deleteCmd)
}

func uploadFile(path string) {
	f, err := os.Open(path)
	if err != nil {
		log.Fatalf("Error opening file: %v", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		log.Fatalf("Error building request: %v", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		log.Fatalf("Error reading file: %v", err)
	}
	mw.Close()

	resp, err := http.Post(serverURL+"/api/upload", mw.FormDataContentType(), &buf)
	if err != nil {
		log.Fatalf("Error uploading document: %v", err)
	}
	defer resp.Body.Close()
	printResponse(resp)
}

func listDocuments() {
	getJSON("/api/documents")
}

func deleteDocument(docID string) {
	req, err := http.NewRequest(http.MethodDelete, serverURL+"/api/documents/"+docID, nil)
	if err != nil {
		log.Fatalf("Error building request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatalf("Error deleting document: %v", err)
	}
	defer resp.Body.Close()
	printResponse(resp)
}

func getJSON(path string) {
	resp, err := http.Get(serverURL + path)
	if err != nil {
		log.Fatalf("Error calling server: %v", err)
	}
	defer resp.Body.Close()
	printResponse(resp)
}

// printResponse pretty-prints the JSON body and exits non-zero on API errors.
func printResponse(resp *http.Response) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Fatalf("Error reading response: %v", err)
	}

	var prettyJSON bytes.Buffer
	if err := json.Indent(&prettyJSON, body, "", "  "); err != nil {
		fmt.Println(string(body))
	} else {
		fmt.Println(prettyJSON.String())
	}

	if resp.StatusCode >= 400 {
		os.Exit(1)
	}
}
