/*
	Project: Kazi - assignments & submissions for private tutoring
*/
package kazi

/*
TODO: grading
	- Tutor reviews a submission: mark + written feedback
	- Student sees mark once published; notify on publish
	- reopen: Tutor may reject a submission and unlock a resubmission (bumps attempt count)

TODO: admin: upload CSV to bulk create students

TODO: uploads
	- allowlist content types (pdf | docx | images) instead of accepting anything under the size cap
	- virus scan before the file is handed to storage ???

TODO: pagination on assignment lists (cursor on created_at; clients currently get everything)

TODO: notifications
	- in-app unread badge for new assignments & returned grades
	- weekly digest email per student: what is due, what was graded
*/
