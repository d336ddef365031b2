package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragledger/internal/core/domain"
	"github.com/custodia-labs/ragledger/internal/core/ports/driving"
)

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "Manage registered documents",
	Long:  `Register, inspect, advance, and delete documents and their files and links.`,
}

var documentRegisterCmd = &cobra.Command{
	Use:   "register [source] [source-uri]",
	Short: "Register a document",
	Long: `Registers a document discovered by a connector. The document ID is derived
from the source and URI unless --id is given. Registering twice is a no-op.`,
	Args: cobra.ExactArgs(2),
	RunE: runDocumentRegister,
}

var documentGetCmd = &cobra.Command{
	Use:   "get [doc-id]",
	Short: "Show document info",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentGet,
}

var documentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List documents",
	Args:  cobra.NoArgs,
	RunE:  runDocumentList,
}

var documentAdvanceCmd = &cobra.Command{
	Use:   "advance [doc-id] [status]",
	Short: "Advance a document's lifecycle status",
	Long: `Moves a document forward through the lifecycle:
  discovered -> fetched -> extracted -> chunked -> indexed

Any status may move to failed or needs_review. A document in needs_review
returns to the status it held before review.`,
	Args: cobra.ExactArgs(2),
	RunE: runDocumentAdvance,
}

var documentMetadataCmd = &cobra.Command{
	Use:   "metadata [doc-id]",
	Short: "Replace document metadata",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentMetadata,
}

var documentDeleteCmd = &cobra.Command{
	Use:   "delete [doc-id]",
	Short: "Delete a document and everything it owns",
	Long: `Deletes a document with its files, links, extractions, chunks, enrichments,
OCR runs, review entries and search projection. Processing runs are kept
and lose their document reference.`,
	Args: cobra.ExactArgs(1),
	RunE: runDocumentDelete,
}

var documentFilesCmd = &cobra.Command{
	Use:   "files [doc-id]",
	Short: "List stored file variants",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentFiles,
}

var documentPutFileCmd = &cobra.Command{
	Use:   "put-file [doc-id] [variant] [storage-uri]",
	Short: "Record a stored file variant",
	Args:  cobra.ExactArgs(3),
	RunE:  runDocumentPutFile,
}

var documentLinksCmd = &cobra.Command{
	Use:   "links [doc-id]",
	Short: "List external links",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentLinks,
}

var documentAddLinkCmd = &cobra.Command{
	Use:   "add-link [doc-id] [link-type] [url]",
	Short: "Attach an external link",
	Args:  cobra.ExactArgs(3),
	RunE:  runDocumentAddLink,
}

var documentVersionCmd = &cobra.Command{
	Use:   "version [doc-id]",
	Short: "Show the latest successfully processed pipeline version",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentVersion,
}

var (
	documentID       string
	documentJSON     bool
	documentSource   string
	documentStatus   string
	documentLimit    int
	documentMetadata metadataFlags
	fileSHA256       string
	fileBytes        int64
	fileMimeType     string
	linkLabel        string
)

// metadataFlags carries the descriptive fields settable from the command line.
type metadataFlags struct {
	title         string
	author        string
	year          int
	language      string
	contentType   string
	canonicalURL  string
	fingerprint   string
	categories    []string
	sourceDataset string
}

func (m metadataFlags) toDomain() domain.DocumentMetadata {
	return domain.DocumentMetadata{
		Title:              m.title,
		Author:             m.author,
		PublishedYear:      m.year,
		Language:           m.language,
		ContentType:        m.contentType,
		CanonicalURL:       m.canonicalURL,
		ContentFingerprint: m.fingerprint,
		Categories:         m.categories,
		SourceDataset:      m.sourceDataset,
	}
}

func addMetadataFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&documentMetadata.title, "title", "", "document title")
	f.StringVar(&documentMetadata.author, "author", "", "document author")
	f.IntVar(&documentMetadata.year, "year", 0, "publication year")
	f.StringVar(&documentMetadata.language, "language", "", "language code")
	f.StringVar(&documentMetadata.contentType, "content-type", "", "MIME type of the canonical file")
	f.StringVar(&documentMetadata.canonicalURL, "canonical-url", "", "canonical URL")
	f.StringVar(&documentMetadata.fingerprint, "fingerprint", "", "content fingerprint")
	f.StringSliceVar(&documentMetadata.categories, "category", nil, "category (repeatable)")
	f.StringVar(&documentMetadata.sourceDataset, "dataset", "", "source dataset")
}

func init() {
	documentRegisterCmd.Flags().StringVar(&documentID, "id", "", "explicit document ID")
	addMetadataFlags(documentRegisterCmd)
	addMetadataFlags(documentMetadataCmd)

	documentGetCmd.Flags().BoolVar(&documentJSON, "json", false, "output as JSON")
	documentListCmd.Flags().BoolVar(&documentJSON, "json", false, "output as JSON")
	documentListCmd.Flags().StringVar(&documentSource, "source", "", "filter by source")
	documentListCmd.Flags().StringVar(&documentStatus, "status", "", "filter by status")
	documentListCmd.Flags().IntVarP(&documentLimit, "limit", "n", 0, "maximum number of documents")

	documentPutFileCmd.Flags().StringVar(&fileSHA256, "sha256", "", "hex SHA-256 of the file")
	documentPutFileCmd.Flags().Int64Var(&fileBytes, "bytes", 0, "file size in bytes")
	documentPutFileCmd.Flags().StringVar(&fileMimeType, "mime-type", "", "file MIME type")
	documentAddLinkCmd.Flags().StringVar(&linkLabel, "label", "", "link label")

	documentCmd.AddCommand(documentRegisterCmd)
	documentCmd.AddCommand(documentGetCmd)
	documentCmd.AddCommand(documentListCmd)
	documentCmd.AddCommand(documentAdvanceCmd)
	documentCmd.AddCommand(documentMetadataCmd)
	documentCmd.AddCommand(documentDeleteCmd)
	documentCmd.AddCommand(documentFilesCmd)
	documentCmd.AddCommand(documentPutFileCmd)
	documentCmd.AddCommand(documentLinksCmd)
	documentCmd.AddCommand(documentAddLinkCmd)
	documentCmd.AddCommand(documentVersionCmd)
	rootCmd.AddCommand(documentCmd)
}

func runDocumentRegister(cmd *cobra.Command, args []string) error {
	if documentRegistry == nil {
		return errNotConfigured("document registry")
	}

	doc, err := documentRegistry.Register(cmd.Context(), driving.RegisterDocumentRequest{
		ID:        documentID,
		Source:    args[0],
		SourceURI: args[1],
		Metadata:  documentMetadata.toDomain(),
	})
	if err != nil {
		return fmt.Errorf("failed to register document: %w", err)
	}

	cmd.Printf("Document %s (%s)\n", doc.ID, doc.Status)
	return nil
}

func runDocumentGet(cmd *cobra.Command, args []string) error {
	if documentRegistry == nil {
		return errNotConfigured("document registry")
	}

	doc, err := documentRegistry.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	if documentJSON {
		return printJSON(cmd, doc)
	}

	cmd.Printf("Document: %s\n\n", doc.ID)
	cmd.Printf("  Source:   %s\n", doc.Source)
	cmd.Printf("  URI:      %s\n", doc.SourceURI)
	cmd.Printf("  Status:   %s\n", doc.Status)
	if doc.Status == domain.StatusNeedsReview {
		cmd.Printf("  Previous: %s\n", doc.PreviousStatus)
	}
	cmd.Printf("  Title:    %s\n", orDash(doc.Title))
	cmd.Printf("  Author:   %s\n", orDash(doc.Author))
	if doc.PublishedYear != 0 {
		cmd.Printf("  Year:     %d\n", doc.PublishedYear)
	}
	cmd.Printf("  Created:  %s\n", formatTime(doc.CreatedAt))
	cmd.Printf("  Updated:  %s\n", formatTime(doc.UpdatedAt))
	return nil
}

func runDocumentList(cmd *cobra.Command, _ []string) error {
	if documentRegistry == nil {
		return errNotConfigured("document registry")
	}

	docs, err := documentRegistry.List(cmd.Context(), domain.DocumentFilter{
		Source: documentSource,
		Status: domain.DocumentStatus(documentStatus),
		Limit:  documentLimit,
	})
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if documentJSON {
		return printJSON(cmd, docs)
	}

	if len(docs) == 0 {
		cmd.Println("No documents found.")
		return nil
	}

	for i := range docs {
		cmd.Printf("  %s  %-12s  %s\n", docs[i].ID, docs[i].Status, orDash(docs[i].Title))
	}
	cmd.Printf("\nTotal: %d documents\n", len(docs))
	return nil
}

func runDocumentAdvance(cmd *cobra.Command, args []string) error {
	if documentRegistry == nil {
		return errNotConfigured("document registry")
	}

	doc, err := documentRegistry.AdvanceStatus(cmd.Context(), args[0], domain.DocumentStatus(args[1]))
	if err != nil {
		return fmt.Errorf("failed to advance document: %w", err)
	}

	cmd.Printf("Document %s is now %s.\n", doc.ID, doc.Status)
	return nil
}

func runDocumentMetadata(cmd *cobra.Command, args []string) error {
	if documentRegistry == nil {
		return errNotConfigured("document registry")
	}

	doc, err := documentRegistry.UpdateMetadata(cmd.Context(), args[0], documentMetadata.toDomain())
	if err != nil {
		return fmt.Errorf("failed to update metadata: %w", err)
	}

	cmd.Printf("Metadata of document %s updated.\n", doc.ID)
	return nil
}

func runDocumentDelete(cmd *cobra.Command, args []string) error {
	if documentRegistry == nil {
		return errNotConfigured("document registry")
	}

	if err := documentRegistry.Delete(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	cmd.Printf("Document %s deleted.\n", args[0])
	return nil
}

func runDocumentFiles(cmd *cobra.Command, args []string) error {
	if documentRegistry == nil {
		return errNotConfigured("document registry")
	}

	files, err := documentRegistry.ListFiles(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to list files: %w", err)
	}

	if len(files) == 0 {
		cmd.Println("No files recorded.")
		return nil
	}

	for _, f := range files {
		cmd.Printf("  %-10s %s (%d bytes)\n", f.Variant, f.StorageURI, f.Bytes)
		if f.SHA256 != "" {
			cmd.Printf("             sha256 %s\n", f.SHA256)
		}
	}
	return nil
}

func runDocumentPutFile(cmd *cobra.Command, args []string) error {
	if documentRegistry == nil {
		return errNotConfigured("document registry")
	}

	file, err := documentRegistry.PutFile(cmd.Context(), driving.PutFileRequest{
		DocumentID: args[0],
		Variant:    args[1],
		StorageURI: args[2],
		SHA256:     fileSHA256,
		Bytes:      fileBytes,
		MimeType:   fileMimeType,
	})
	if err != nil {
		return fmt.Errorf("failed to record file: %w", err)
	}

	cmd.Printf("File %s of document %s recorded.\n", file.Variant, file.DocumentID)
	return nil
}

func runDocumentLinks(cmd *cobra.Command, args []string) error {
	if documentRegistry == nil {
		return errNotConfigured("document registry")
	}

	links, err := documentRegistry.ListLinks(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to list links: %w", err)
	}

	if len(links) == 0 {
		cmd.Println("No links recorded.")
		return nil
	}

	for _, l := range links {
		cmd.Printf("  %-10s %s %s\n", l.LinkType, l.URL, l.Label)
	}
	return nil
}

func runDocumentAddLink(cmd *cobra.Command, args []string) error {
	if documentRegistry == nil {
		return errNotConfigured("document registry")
	}

	link, err := documentRegistry.AddLink(cmd.Context(), driving.AddLinkRequest{
		DocumentID: args[0],
		LinkType:   args[1],
		URL:        args[2],
		Label:      linkLabel,
	})
	if err != nil {
		return fmt.Errorf("failed to add link: %w", err)
	}

	cmd.Printf("Link %s added to document %s.\n", link.URL, link.DocumentID)
	return nil
}

func runDocumentVersion(cmd *cobra.Command, args []string) error {
	if artifactService == nil {
		return errNotConfigured("artifact service")
	}

	v, err := artifactService.GetLatestVersion(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get latest version: %w", err)
	}

	cmd.Println(v)
	return nil
}
