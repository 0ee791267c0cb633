// Tapekeeper manages the lifecycle of virtual tapes in an AWS Storage
// Gateway Virtual Tape Library: inventory, age-based cleanup, and
// targeted deletion, with a dry-run safety gate in front of every
// mutating operation.
//
// Usage:
//
//	# Inventory all tapes in a region
//	tapekeeper list --region us-east-1
//
//	# Inventory only archived tapes, saving barcodes to a file
//	tapekeeper list --region us-east-1 --status ARCHIVED --output tapes.txt
//
//	# Show the deletion plan for tapes older than 90 days (dry run)
//	tapekeeper prune --region us-east-1 --days 90
//
//	# Actually delete them
//	tapekeeper prune --region us-east-1 --days 90 --execute
//
//	# Delete specific tapes by barcode or ARN
//	tapekeeper delete --region us-east-1 --tapes VTL001,VTL002 --execute
//
//	# Delete the tapes listed in a file produced by `list --output`
//	tapekeeper delete --region us-east-1 --tape-file tapes.txt --execute
//
//	# Run the prune on a schedule (daemon mode)
//	tapekeeper schedule --region us-east-1 --cron "0 3 * * *" --days 90
package main

func main() {
	Execute()
}
