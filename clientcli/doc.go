// Package clientcli provides a client library for the notesd HTTP API.
//
// Requests are signed with AWS Signature V4 using the access key and secret
// issued by "notesd keys add". The package includes profile-based
// configuration for managing connections to multiple servers.
//
// # Basic Usage
//
//	cfg := &clientcli.Config{
//		Endpoint:  "http://localhost:5708",
//		AccessKey: "your-access-key",
//		SecretKey: "your-secret-key",
//	}
//
//	client, err := clientcli.New(cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	note, err := client.Create(ctx, notes.CreateNoteRequest{Content: "hello"})
//
// # Profile Configuration
//
//	configFile, err := clientcli.LoadConfigFile(clientcli.DefaultConfigPath())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	profile, err := configFile.GetProfile("production")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	client, err := clientcli.New(clientcli.ConfigFromProfile(profile))
//
// # Output Formatting
//
//	formatter := clientcli.NewFormatter(jsonOutput, quiet)
//	formatter.FormatNotes(os.Stdout, items)
package clientcli
